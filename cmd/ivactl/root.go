package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ivagate/internal/classifier"
	"ivagate/internal/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ivactl",
		Short:         "Inspect how Iva reacts to a balance and a message",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")

	rootCmd.AddCommand(newTierCmd())
	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newIdleCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

func loadEngine() (*config.Config, *classifier.Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, classifier.New(cfg.ClassifierOptions()), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
