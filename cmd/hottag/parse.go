package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/parser"
)

// parseCmd creates the "parse" subcommand, which runs a parser over a saved
// title page and prints the records as JSON.
func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.html>",
		Short: "Parse a saved title page and print the championships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy := parserName
			if strategy == "" {
				strategy = config.DefaultConfig().Source.Parser
			}
			logger := setupLogger(config.DefaultConfig().Logging)

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read page: %w", err)
			}

			p, err := parser.New(strategy, logger)
			if err != nil {
				return err
			}
			records, err := p.Parse(body)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
}
