package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect static asset resolution",
}

var assetsResolveCmd = &cobra.Command{
	Use:   "resolve <file>...",
	Short: "Print the URL each asset name resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadSettings()
		if err != nil {
			return err
		}
		resolver := newResolver(cfg, log)

		data := pterm.TableData{{"Name", "URL"}}
		for _, name := range args {
			data = append(data, []string{name, resolver.Static(name)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		if !resolver.IsDev() {
			st := resolver.Stats()
			pterm.Info.Printfln("manifest hits: %d, fallbacks: %d", st.Hits, st.Fallbacks)
		}
		return nil
	},
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vite manifest entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadSettings()
		if err != nil {
			return err
		}
		resolver := newResolver(cfg, log)
		if err := resolver.Warm(); err != nil {
			pterm.Warning.Printfln("manifest unavailable: %v", err)
			return nil
		}

		names := resolver.Entries()
		if len(names) == 0 {
			pterm.Info.Println("manifest is empty")
			return nil
		}

		data := pterm.TableData{{"Name", "File", "Entry", "CSS"}}
		for _, name := range names {
			e, _ := resolver.Entry(name)
			entry := ""
			if e.IsEntry {
				entry = "yes"
			}
			data = append(data, []string{name, e.File, entry, strings.Join(e.CSS, ", ")})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	assetsCmd.AddCommand(assetsResolveCmd, assetsListCmd)
}
