package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/config"
)

var (
	workerMode bool
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Run booking maintenance commands",
}

var bookingsConflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Report slots that were paid for more than once",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"bookings_conflicts",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ConflictScanInterval },
			func(s *service.BookingService, ctx context.Context) error {
				return s.RunConflictScanBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(bookingsConflictsCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.BookingService, ctx context.Context) error,
) {
	cfg, bookingService, cleanup := mustCreateBookingService()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), bookingService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(bookingService, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	bookingService *service.BookingService,
	fn func(s *service.BookingService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(bookingService, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(bookingService, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
