package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kaizen/analysis"
	"kaizen/config"
	"kaizen/diagnostic"
	"kaizen/diff"
	"kaizen/output"
	"kaizen/parser"
	"kaizen/rules"
)

var sourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
}

var checkCmd = &cobra.Command{
	Use:   "check [PATH]",
	Short: "Analyze JavaScript/TypeScript source for quality and security issues",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "Output format: text|json|ndjson|csv|sarif")
	checkCmd.Flags().Bool("fail-on-warnings", false, "Exit non-zero on any diagnostic, not just errors")
	checkCmd.Flags().String("fail-on", "", "Minimum severity that fails the run: error|warning|info|hint")
	checkCmd.Flags().Bool("staged", false, "Only report diagnostics for files staged in git")
	checkCmd.Flags().Bool("ci", false, "Only report diagnostics for files changed vs the CI baseline ref")
	checkCmd.Flags().String("base", "", "Baseline git ref for --ci (auto-detected from GITHUB_BASE_REF / CI_MERGE_REQUEST_TARGET_BRANCH_NAME / KAIZEN_BASELINE_REF otherwise)")
	checkCmd.Flags().String("github-token", "", "GitHub API token; with --github-repo/--github-pr, diffs via the GitHub PR files API instead of git")
	checkCmd.Flags().String("github-repo", "", "GitHub repository as owner/repo")
	checkCmd.Flags().Int("github-pr", 0, "GitHub pull request number")
	checkCmd.Flags().String("output-file", "", "Write the report to a file instead of stdout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	format, _ := cmd.Flags().GetString("format")
	failOnWarnings, _ := cmd.Flags().GetBool("fail-on-warnings")
	failOnStr, _ := cmd.Flags().GetString("fail-on")
	staged, _ := cmd.Flags().GetBool("staged")
	ci, _ := cmd.Flags().GetBool("ci")
	baseRef, _ := cmd.Flags().GetString("base")
	githubToken, _ := cmd.Flags().GetString("github-token")
	githubRepo, _ := cmd.Flags().GetString("github-repo")
	githubPR, _ := cmd.Flags().GetInt("github-pr")
	outputFile, _ := cmd.Flags().GetString("output-file")

	threshold := output.FailOnError
	if failOnWarnings {
		threshold = output.FailOnHint
	}
	if failOnStr != "" {
		parsed, err := output.ParseFailOnThreshold(failOnStr)
		if err != nil {
			return err
		}
		threshold = parsed
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", target, err)
	}

	cfgFile, warnings, err := loadConfig(absTarget)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Message)
	}

	tier := config.ResolveTier(cfgFile.License.APIKey, false)
	rulesCfg, cfgWarnings := config.ToRulesConfig(cfgFile, tier)
	for _, w := range cfgWarnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Message)
	}

	engine := analysis.New()
	engine.Registry = rules.Default()
	engine.Registry.Configure(rulesCfg)

	files, err := discoverFiles(absTarget, cfgFile.Include, cfgFile.Exclude)
	if err != nil {
		return err
	}

	logger := output.NewLogger(output.VerbosityNormal)
	logger.Progress("Analyzing %d file(s)...", len(files))

	var diags []diagnostic.Diagnostic
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping unreadable file %s: %v\n", f, err)
			continue
		}
		pf, err := parser.Parse(f, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", f, err)
			continue
		}
		diags = append(diags, engine.Analyze(pf)...)
	}

	if staged {
		staging := &diff.StagedFilesProvider{ProjectRoot: absTarget}
		stagedFiles, err := staging.GetChangedFiles()
		if err != nil {
			return fmt.Errorf("listing staged files: %w", err)
		}
		abs := make([]string, len(stagedFiles))
		for i, f := range stagedFiles {
			abs[i] = filepath.Join(absTarget, f)
		}
		diags = output.FilterByFiles(diags, abs)
	}

	if githubToken != "" && githubRepo != "" && githubPR > 0 {
		owner, repo, err := splitGitHubRepo(githubRepo)
		if err != nil {
			return err
		}
		provider, err := diff.NewChangedFilesProvider(diff.ProviderOptions{
			GitHubToken: githubToken,
			Owner:       owner,
			Repo:        repo,
			PRNumber:    githubPR,
		})
		if err != nil {
			return fmt.Errorf("resolving GitHub PR diff provider: %w", err)
		}
		changed, err := provider.GetChangedFiles()
		if err != nil {
			return fmt.Errorf("listing PR #%d changed files: %w", githubPR, err)
		}
		abs := make([]string, len(changed))
		for i, f := range changed {
			abs[i] = filepath.Join(absTarget, f)
		}
		diags = output.FilterByFiles(diags, abs)
	} else if ci || baseRef != "" {
		ref := baseRef
		if ref == "" {
			ref = diff.ResolveBaseRef()
		}
		if ref == "" {
			return fmt.Errorf("--ci requires a baseline ref: none detected from CI environment and --base not set")
		}
		if err := diff.ValidateGitRef(absTarget, ref); err != nil {
			return err
		}
		changed, err := diff.ComputeChangedFiles(ref, "HEAD", absTarget)
		if err != nil {
			return fmt.Errorf("computing changed files against %s: %w", ref, err)
		}
		abs := make([]string, len(changed))
		for i, f := range changed {
			abs[i] = filepath.Join(absTarget, f)
		}
		diags = output.FilterByFiles(diags, abs)
	}

	w := os.Stdout
	var closer func() error
	if outputFile != "" {
		fh, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", outputFile, err)
		}
		w = fh
		closer = fh.Close
	}

	wd, _ := os.Getwd()
	if err := writeReport(w, format, diags, len(files), wd, absTarget); err != nil {
		return err
	}
	if closer != nil {
		if err := closer(); err != nil {
			return err
		}
	}

	code := output.ExitCode(diags, threshold)
	if code != output.ExitClean {
		os.Exit(code)
	}
	return nil
}

func writeReport(w *os.File, format string, diags []diagnostic.Diagnostic, totalFiles int, wd, analyzedPath string) error {
	switch format {
	case "", "text":
		output.WriteText(w, diags, output.IsTTY(w))
		return nil
	case "json":
		report := output.BuildJSONReport(Version, wd, analyzedPath, totalFiles, diags)
		return output.WriteJSON(w, report)
	case "ndjson":
		report := output.BuildJSONReport(Version, wd, analyzedPath, totalFiles, diags)
		return output.WriteNDJSON(w, report)
	case "csv":
		return output.WriteCSV(w, diags)
	case "sarif":
		return output.WriteSARIF(w, diags)
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

// loadConfig discovers and decodes kaizen.toml starting from dir, returning
// an empty file (never an error) when none is found.
func loadConfig(dir string) (*config.File, []config.Warning, error) {
	path := config.Discover(dir)
	if path == "" {
		return &config.File{}, nil, nil
	}
	return config.Load(path)
}

// discoverFiles walks root collecting JS/TS source files, honoring the
// config's include/exclude globs (matched against the path relative to
// root) when any are set.
func discoverFiles(root string, include, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if len(exclude) > 0 && matchesAny(exclude, rel) {
			return nil
		}
		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// splitGitHubRepo parses "owner/repo" into its two parts.
func splitGitHubRepo(s string) (owner, repo string, err error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("--github-repo must be owner/repo, got %q", s)
	}
	return parts[0], parts[1], nil
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := filepath.Match(g, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(g, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
