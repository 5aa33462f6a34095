package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kaizen/rules"
)

var explainCmd = &cobra.Command{
	Use:   "explain RULE_ID",
	Short: "Print a rule's description, category, and tier",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(_ *cobra.Command, args []string) error {
	id := args[0]
	registry := rules.Default()
	rule, ok := registry.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown rule %q", id)
	}

	md := rule.Metadata()
	fmt.Printf("%s: %s\n", md.ID, md.Name)
	fmt.Printf("Category: %s\n", md.Category)
	fmt.Printf("Default severity: %s\n", md.DefaultSeverity)
	fmt.Printf("Minimum tier: %s\n", tierName(md.MinTier))
	if md.Description != "" {
		fmt.Printf("\n%s\n", md.Description)
	}
	if md.Examples != "" {
		fmt.Printf("\nExample:\n%s\n", md.Examples)
	}
	if md.DocsURL != "" {
		fmt.Printf("\nDocs: %s\n", md.DocsURL)
	}
	return nil
}

func tierName(t rules.Tier) string {
	switch t {
	case rules.Pro:
		return "pro"
	case rules.Enterprise:
		return "enterprise"
	default:
		return "free"
	}
}
