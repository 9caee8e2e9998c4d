package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/pkg/cache"
	"github.com/gtera/thiwa/pkg/database"
	"github.com/gtera/thiwa/pkg/queue"
)

var queueWorkersFlag int

// thiwa queue:work drains the shared Redis queue from a standalone process.
// Useful when the gateway's in-process workers are disabled or overloaded.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start a standalone queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))

		if err := database.Connect(); err == nil {
			queue.UseDB(database.DB)
		}
		notify.RegisterJobs()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 4
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 4, "Number of concurrent workers")
}
