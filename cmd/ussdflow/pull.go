package main

import (
	"fmt"
	"io"

	"github.com/aretw0/ussdflow/internal/cli"
	"github.com/aretw0/ussdflow/pkg/merge"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [flow]",
	Short: "Merge flows from the catalog into the workspace",
	Long: `Without arguments every published flow is merged into the workspace.
With a flow name only that flow is refreshed, into --group or into the group
that already carries it. Local nodes always win over remote ones.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		flow := ""
		if len(args) > 0 {
			flow = args[0]
		}
		group, _ := cmd.Flags().GetString("group")
		out := cmd.OutOrStdout()

		rep, err := app.Pull(cmd.Context(), flow, group)
		if err != nil {
			return err
		}
		printReport(out, flow, rep)

		if watch, _ := cmd.Flags().GetBool("watch"); !watch {
			return nil
		}
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		cli.PrintSystemMessage(out, "Watching catalog for changes. Press Ctrl+C to stop.")
		err = app.Watch(sigCtx, func(name string, rep merge.Report) {
			printReport(out, name, rep)
		})
		if sig := sigCtx.Signal(); sig != nil {
			cli.PrintSystemMessage(out, "Stopped (%v).", sig)
		}
		return err
	},
}

func printReport(w io.Writer, flow string, rep merge.Report) {
	if flow == "" {
		flow = "all flows"
	}
	if !rep.Changed() {
		cli.PrintSystemMessage(w, "%s: up to date.", flow)
		return
	}
	cli.PrintSystemMessage(w, "%s: +%d nodes, +%d edges (%d nodes kept local).",
		flow, len(rep.AddedNodes), len(rep.AddedEdges), rep.SkippedNodes)
	if len(rep.Groups) > 0 {
		fmt.Fprintf(w, "    new groups: %v\n", rep.Groups)
	}
	if len(rep.Repaired) > 0 {
		fmt.Fprintf(w, "    repaired orphans: %v\n", rep.Repaired)
	}
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().String("group", "", "Group to place a refreshed flow in")
	pullCmd.Flags().Bool("watch", false, "Keep refreshing flows as the catalog changes")
}
