package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDBCmd(a *app) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the offline error-code database",
		RunE:  subCommandExists,
	}

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch the latest JSON database to the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.errorDB()
			if err != nil {
				return err
			}
			if err := db.Refresh(cmd.Context()); err != nil {
				return err
			}
			n, err := db.Len()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database updated: %d codes cached in %s\n", n, db.CachePath())
			return nil
		},
	}

	lookupCmd := &cobra.Command{
		Use:   "lookup CODE [CODE...]",
		Short: "Translate error codes using the offline database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.errorDB()
			if err != nil {
				return err
			}
			for _, code := range args {
				desc, err := db.Translate(code)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", code, desc)
			}
			return nil
		},
	}

	dbCmd.AddCommand(downloadCmd, lookupCmd)
	return dbCmd
}
