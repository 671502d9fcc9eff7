package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagesentry/pagesentry/internal/fetch"
	"github.com/pagesentry/pagesentry/internal/model"
	"github.com/pagesentry/pagesentry/internal/scan"
	"github.com/pagesentry/pagesentry/internal/verify"
)

var (
	checkTimeout  time.Duration
	checkOut      string
	checkBackend  string
	checkInsecure bool
	checkLocal    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <url-or-file>",
	Short: "Scan a single page once and report flagged claims",
	Long: `Check runs one scan pass over a page:
- Extract candidate factual claims
- Screen each claim with local heuristics
- Verify flagged claims against the configured backend
- Report every highlighted claim with verdict and confidence

Example:
  pagesentry check https://example.com/article
  pagesentry check ./saved-page.html --out annotated.html
  pagesentry check https://example.com --local`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&checkOut, "out", "", "write annotated HTML to this path")
	checkCmd.Flags().StringVar(&checkBackend, "backend", "", "verification backend (service, openai; overrides config)")
	checkCmd.Flags().BoolVar(&checkInsecure, "insecure", false, "skip TLS certificate verification")
	checkCmd.Flags().BoolVar(&checkLocal, "local", false, "local heuristics only, no remote verification")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.HTTP.InsecureTLS = checkInsecure
	if checkBackend != "" {
		cfg.Verify.Backend = checkBackend
	}
	if checkLocal {
		cfg.Verify.Backend = ""
	}

	checker, err := verify.NewChecker(cfg.Verify)
	if err != nil {
		return err
	}
	pipeline := verify.NewPipeline(checker, cfg.Verify.VerdictCacheTTL, logger)

	source := newSource(target, cfg)
	monitor := scan.NewMonitor("", source, pipeline, cfg.Monitor, nil, nil, logger)

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", source.Location())
		if pipeline.LocalOnly() {
			fmt.Fprintf(os.Stderr, "Backend: local heuristics only\n")
		} else {
			fmt.Fprintf(os.Stderr, "Backend: %s\n", checker.Name())
		}
		fmt.Fprintln(os.Stderr)
	}

	count, err := monitor.Scan(ctx, true)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	annotations := monitor.Annotations()
	if count == 0 {
		fmt.Println("No suspicious claims found.")
	} else {
		fmt.Printf("Found %d suspicious claim(s):\n\n", count)
		for i, a := range annotations {
			fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(a.RiskLabel), a.Text)
			fmt.Printf("   Verdict: %s (%.0f%% confidence)\n", a.Outcome, a.Confidence*100)
			if a.Explanation != "" {
				fmt.Printf("   %s\n", a.Explanation)
			}
			fmt.Println()
		}
	}

	if checkOut != "" {
		html, err := monitor.HTML()
		if err != nil {
			return fmt.Errorf("render annotated page: %w", err)
		}
		if err := os.WriteFile(checkOut, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write annotated page: %w", err)
		}
		fmt.Printf("Wrote annotated page: %s\n", checkOut)
	}

	return nil
}

// newSource builds a page source for a URL or a local HTML file
func newSource(target string, cfg *model.Config) scan.Source {
	if isURL(target) {
		return scan.NewURLSource(target, fetch.NewFetcher(cfg.HTTP))
	}
	return scan.NewFileSource(target)
}

// isURL reports whether the target looks like a remote page
func isURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
