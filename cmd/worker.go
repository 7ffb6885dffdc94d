package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hospital-admin/internal/verification"
	verificationPostgres "github.com/frahmantamala/hospital-admin/internal/verification/postgres"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/frahmantamala/hospital-admin/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background jobs",
	Long:  `Run scheduled maintenance, currently the sweep of expired verification codes`,
	Run: func(cmd *cobra.Command, args []string) {
		startWorker()
	},
}

const sweepTimeout = 30 * time.Second

var (
	workerSchedule string
	workerRunOnce  bool
)

func startWorker() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.InitWithOptions(logger.Options{
		Env:    cfg.Logging.Env,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	gormDB, db, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sweeper := verification.NewSweeper(verificationPostgres.NewExpiredCodeStore(gormDB), lg)
	sweep := newSweepJob(sweeper, metrics.New(db.DB), lg)

	if workerRunOnce {
		sweep()
		return
	}

	schedule := getStringFlag(workerSchedule, cfg.Verification.GetSweepSchedule())
	c := cron.New()
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		lg.Error("invalid sweep schedule", "schedule", schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	lg.Info("worker started", "sweep_schedule", schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("Received signal, shutting down worker...", "signal", sig)

	// wait for a running sweep to finish
	<-c.Stop().Done()
	lg.Info("worker stopped")
}

// newSweepJob adapts a sweep to cron's func() signature. Failures are logged and the
// next tick tries again.
func newSweepJob(sweeper *verification.Sweeper, m *metrics.Metrics, lg *slog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		n, err := sweeper.Sweep(ctx)
		if err != nil {
			lg.Error("verification code sweep failed", "error", err)
			return
		}
		m.ObserveSwept(n)
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	workerCmd.Flags().StringVar(&workerSchedule, "schedule", "", "Cron schedule for the sweep, overrides verification.sweep_schedule")
	workerCmd.Flags().BoolVar(&workerRunOnce, "run-once", false, "Sweep once and exit")

	rootCmd.AddCommand(workerCmd)
}
