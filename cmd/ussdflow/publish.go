package main

import (
	"github.com/aretw0/ussdflow/internal/cli"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the workspace flow, or one group, to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		group, _ := cmd.Flags().GetString("group")
		doc, err := app.Workspace.Publish(cmd.Context(), group)
		if err != nil {
			return err
		}
		if err := app.Workspace.Save(cmd.Context()); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Published '%s' (%d nodes).", doc.FlowName, len(doc.Nodes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("group", "", "Publish the subflow of this group")
}
