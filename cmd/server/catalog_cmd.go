package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect notification content",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a content file, or the bundled content when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogCheck,
}

func init() {
	catalogCmd.AddCommand(catalogCheckCmd)
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	cat, err := loadCatalog(path)
	if err != nil {
		return fmt.Errorf("catalog invalid: %w", err)
	}

	source := path
	if source == "" {
		source = "bundled content"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", source)
	fmt.Fprintf(out, "  exposure: %d (%d scams)\n", len(cat.Exposure()), len(cat.Training()))
	fmt.Fprintf(out, "  test:     %d\n", len(cat.Test()))
	for _, info := range cat.Tactics() {
		fmt.Fprintf(out, "  tactic %-16s %s\n", info.Tactic, info.Name)
	}
	return nil
}
