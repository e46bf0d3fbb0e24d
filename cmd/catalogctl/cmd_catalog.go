package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a catalog for schema errors, duplicate ids and unordered breakpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: catalog %s, %d games\n", c.Version(), len(c.Games()))
		return nil
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List games with category, duration and difficulty range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCATEGORY\tMINUTES\tENERGY\tRANGE\tSKILLS")
		for _, g := range c.Games() {
			fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%.1f-%.1f\t%s\n",
				g.ID, g.Category, g.EstimatedMinutes, g.EnergyLevel,
				g.MinDifficulty(), g.MaxDifficulty(), strings.Join(g.Skills, ","))
		}
		return tw.Flush()
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings <gameId> <difficulty>...",
	Short: "Print interpolated settings for one or more difficulty levels",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	gameID := args[0]
	out := cmd.OutOrStdout()
	for _, raw := range args[1:] {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("difficulty %q: %w", raw, err)
		}
		settings, err := c.GenerateSettings(gameID, d)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, settings[k]))
		}
		fmt.Fprintf(out, "%s @ %.2f: %s\n", gameID, d, strings.Join(parts, " "))
	}
	return nil
}
