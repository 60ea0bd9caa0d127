package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/ussdflow/internal/cli"
	"github.com/aretw0/ussdflow/internal/config"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ussdflow",
	Short: "ussdflow edits, validates and publishes USSD menu flows",
	Long: `ussdflow keeps a local workspace of hierarchical USSD flow graphs,
exports them as canonical flow documents and synchronises them with a
remote flow catalog.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (.yaml, .toml or .json)")
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace id (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Disable logging")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.Workspace = ws
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, cfg.Validate()
}

// openApp builds the application from flags and config and hydrates the
// workspace.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	quiet, _ := cmd.Flags().GetBool("quiet")

	app, err := cli.NewApp(cfg, cli.NewLogger(level, quiet))
	if err != nil {
		return nil, err
	}
	if err := app.Hydrate(cmd.Context()); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	return app, nil
}

// loadGraph returns the graph of the --from document when given, or of the
// hydrated workspace.
func loadGraph(cmd *cobra.Command) ([]domain.Node, []domain.Edge, error) {
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		doc, err := readDocument(from)
		if err != nil {
			return nil, nil, err
		}
		nodes, edges := flowdoc.Graph(doc)
		return nodes, edges, nil
	}

	app, err := openApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer app.Close()
	snap := app.Workspace.Graph().Snapshot()
	return snap.Nodes, snap.Edges, nil
}

func readDocument(path string) (domain.FlowDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FlowDocument{}, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := flowdoc.Decode(data)
	if err != nil {
		return domain.FlowDocument{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return doc, nil
}
