// catalogctl inspects and validates game parameter catalogs.
//
// Usage:
//
//	catalogctl validate [-f catalog.yaml]
//	catalogctl games [-f catalog.yaml]
//	catalogctl settings <gameId> <difficulty>... [-f catalog.yaml]
package main

import (
	"fmt"
	"os"

	"brainarcade/internal/catalog"

	"github.com/spf13/cobra"
)

var catalogFile string

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Inspect and validate game parameter catalogs",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogFile, "file", "f", "", "catalog YAML file (default: embedded catalog)")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(settingsCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	c, err := catalog.Load(catalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
