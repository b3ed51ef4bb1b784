package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yads-project/yads/internal/logger"
	"github.com/yads-project/yads/internal/templategen"
)

var templateOpts templategen.Options

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Generate a starter template from this repository",
	Long: `Copy the repository into an output directory with the project name
replaced by a placeholder. Build output, dependencies and local settings are
left out. README.md, .env.example and .github come from
template-generator/template-files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		templateOpts.Logger = logger.New("warn", "text")

		spinner, _ := pterm.DefaultSpinner.Start("generating template")
		written, err := templategen.Generate(templateOpts)
		if err != nil {
			if spinner != nil {
				spinner.Fail(err.Error())
			}
			return err
		}
		if spinner != nil {
			spinner.Success("template created in " + templateOpts.Output)
		}

		items := make([]pterm.BulletListItem, 0, len(written))
		for _, p := range written {
			items = append(items, pterm.BulletListItem{Text: p})
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

func init() {
	f := templateCmd.Flags()
	f.StringVar(&templateOpts.Source, "src", ".", "repository root")
	f.StringVar(&templateOpts.Output, "out", templategen.DefaultOutput, "output directory (cleared first)")
	f.StringVar(&templateOpts.ProjectName, "name", templategen.DefaultProjectName, "project name to replace")
	f.StringVar(&templateOpts.Placeholder, "placeholder", templategen.DefaultPlaceholder, "replacement text")
}
