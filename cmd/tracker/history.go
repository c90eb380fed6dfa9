package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/backup"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently viewed items, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printItems(cmd, a.mgr.History())
		},
	}

	export := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the history to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.mgr.History()
			if err := backup.WriteFile(args[0], items); err != nil {
				return err
			}
			a.logger.Debug("exported history", "file", args[0], "rows", len(items))
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d items to %s\n", len(items), args[0])
			return err
		},
	}

	check := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a history CSV file and list its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.printItems(cmd, items)
		},
	}

	cmd.AddCommand(export, check)
	return cmd
}
