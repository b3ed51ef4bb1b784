package main

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yads-project/yads/internal/models"
	"github.com/yads-project/yads/internal/users"
)

var newUser struct {
	username  string
	email     string
	firstName string
	lastName  string
	staff     bool
	superuser bool
}

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create or replace a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if newUser.username == "" {
			return errors.New("--username is required")
		}

		cfg, log, err := loadSettings()
		if err != nil {
			return err
		}
		store, err := users.Open(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer store.Close()

		u, err := store.Put(models.User{
			Username:    newUser.username,
			Email:       newUser.email,
			FirstName:   newUser.firstName,
			LastName:    newUser.lastName,
			IsStaff:     newUser.staff || newUser.superuser,
			IsSuperuser: newUser.superuser,
			IsActive:    true,
		})
		if err != nil {
			return err
		}
		pterm.Success.Printfln("user %q saved (%d users total)", u.Username, store.Count())
		return nil
	},
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.username, "username", "", "login name")
	f.StringVar(&newUser.email, "email", "", "email address")
	f.StringVar(&newUser.firstName, "first-name", "", "first name")
	f.StringVar(&newUser.lastName, "last-name", "", "last name")
	f.BoolVar(&newUser.staff, "staff", false, "grant staff status")
	f.BoolVar(&newUser.superuser, "superuser", false, "grant superuser status (implies --staff)")
}
