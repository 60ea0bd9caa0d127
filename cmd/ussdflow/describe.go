package main

import (
	"os"

	"github.com/aretw0/ussdflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe a flow in human-readable form",
	Long: `Renders the flow document as Markdown: every screen with its message,
options and destinations. Output is styled on a terminal and plain otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd)
		if err != nil {
			return err
		}
		md := tui.Describe(doc)
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			return tui.Print(f, md)
		}
		_, err = cmd.OutOrStdout().Write([]byte(md))
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().String("group", "", "Describe the subflow of this group")
	describeCmd.Flags().String("from", "", "Describe a flow document file")
}
