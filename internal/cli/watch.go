package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesentry/pagesentry/internal/alert"
	"github.com/pagesentry/pagesentry/internal/bus"
	"github.com/pagesentry/pagesentry/internal/scan"
	"github.com/pagesentry/pagesentry/internal/verify"
)

var (
	watchInterval time.Duration
	watchBackend  string
	watchLocal    bool
	watchStateDir string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <url-or-file> [url-or-file...]",
	Short: "Continuously monitor pages for suspicious claims",
	Long: `Watch starts one monitor per page and a background coordinator,
then scans on a fixed interval until interrupted.

Each monitor re-checks its page every interval, skips unchanged content,
and highlights claims the verification backend flags. Findings flow to
the coordinator, which keeps history and stats, sends notifications, and
escalates high-confidence findings to a deep second-pass check. Pages on
trusted domains are not monitored.

Example:
  pagesentry watch https://example.com/feed
  pagesentry watch ./page.html --interval 10s
  pagesentry watch https://a.example https://b.example --local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "scan interval (overrides config)")
	watchCmd.Flags().StringVar(&watchBackend, "backend", "", "verification backend (service, openai; overrides config)")
	watchCmd.Flags().BoolVar(&watchLocal, "local", false, "local heuristics only, no remote verification")
	watchCmd.Flags().StringVar(&watchStateDir, "state-dir", "", "state directory (default: $HOME/.pagesentry)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchInterval > 0 {
		cfg.Monitor.Interval = watchInterval
	}
	if watchBackend != "" {
		cfg.Verify.Backend = watchBackend
	}
	if watchLocal {
		cfg.Verify.Backend = ""
	}
	if watchStateDir != "" {
		cfg.Storage.Dir = watchStateDir
	}

	checker, err := verify.NewChecker(cfg.Verify)
	if err != nil {
		return err
	}
	pipeline := verify.NewPipeline(checker, cfg.Verify.VerdictCacheTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.New()
	store := alert.NewStore(stateDir(cfg.Storage.Dir))
	coordinator, err := alert.NewCoordinator(cfg.Alerts, store, checker, nil, b, logger)
	if err != nil {
		return err
	}
	go coordinator.Run(ctx)

	var monitors []*scan.Monitor
	for _, target := range args {
		source := newSource(target, cfg)
		m := scan.NewMonitor("", source, pipeline, cfg.Monitor, b, coordinator, logger)
		if err := m.Start(ctx); err != nil {
			return fmt.Errorf("start monitor for %s: %w", target, err)
		}
		coordinator.HandleNavigation(m.ID(), source.Location())
		monitors = append(monitors, m)
		logger.Info("watching", zap.String("source", source.Location()))
	}

	fmt.Fprintf(os.Stderr, "Watching %d page(s), interval %v. Ctrl-C to stop.\n",
		len(monitors), cfg.Monitor.Interval)

	<-ctx.Done()

	for _, m := range monitors {
		m.Stop()
	}

	stats := coordinator.Stats()
	fmt.Fprintf(os.Stderr, "\nScans: %d  Alerts: %d  AI content: %d  Suspicious: %d\n",
		stats.TotalScans, stats.AlertsTriggered, stats.AIContentDetected, stats.SuspiciousContentDetected)
	return nil
}
