package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kaizen/config"
)

const defaultConfigTemplate = `# kaizen configuration
# https://kaizen.dev/docs/configuration

include = []
exclude = ["node_modules/**", "dist/**", "build/**"]

[rules]
# enabled = ["Q030", "S001"]
# disabled = ["Q032"]
min_confidence = "low"
quality = true
security = true

[rules.severity]
# Q030 = "error"

[license]
# api_key = ""
`

const preCommitHook = `#!/bin/sh
# Installed by: kaizen init --hook pre-commit
exec kaizen check --staged --fail-on-warnings
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a kaizen.toml configuration file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing kaizen.toml")
	initCmd.Flags().String("hook", "", "Also install a git hook (supported: pre-commit)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	hook, _ := cmd.Flags().GetString("hook")

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	path := filepath.Join(wd, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; pass --force to overwrite", config.FileName)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Created %s\n", path)

	if hook != "" {
		if err := installHook(wd, hook, force); err != nil {
			return err
		}
	}

	return nil
}

func installHook(projectRoot, hook string, force bool) error {
	if hook != "pre-commit" {
		return fmt.Errorf("unsupported --hook %q (supported: pre-commit)", hook)
	}

	hooksDir := filepath.Join(projectRoot, ".git", "hooks")
	if _, err := os.Stat(hooksDir); err != nil {
		return fmt.Errorf("no .git/hooks directory found at %s: %w", hooksDir, err)
	}

	hookPath := filepath.Join(hooksDir, "pre-commit")
	if _, err := os.Stat(hookPath); err == nil && !force {
		return fmt.Errorf("%s already exists; pass --force to overwrite", hookPath)
	}

	if err := os.WriteFile(hookPath, []byte(preCommitHook), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", hookPath, err)
	}
	fmt.Printf("Installed pre-commit hook at %s\n", hookPath)
	return nil
}
