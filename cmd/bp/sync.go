package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Export stored board tasks to the configured destinations",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		once, _ := cmd.Flags().GetBool("once")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dests := openDestinations(cmd.Context(), cfg)
		if len(dests) == 0 {
			return errors.New("no sync destination configured (set BLUEPRINT_SYNC_S3_BUCKET or BLUEPRINT_SYNC_GIT_REPO)")
		}
		st, err := requireStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		sched := bpsync.NewScheduler(st, firstNonEmpty(project, cfg.ProjectID), dests, cfg.SyncInterval, logger)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		return runSync(cmd.Context(), sched, len(dests), once, cfg.SyncInterval, sigCh)
	},
}

// runSync syncs once, or until stop fires when a positive interval is
// configured. A periodic sync without an interval degrades to one sync.
func runSync(ctx context.Context, sched *bpsync.Scheduler, dests int, once bool, interval time.Duration, stop <-chan os.Signal) error {
	if !once && interval <= 0 {
		logger.Warn("sync interval is not positive, syncing once", "interval", interval)
		once = true
	}
	if once {
		failed, err := sched.SyncOnce(ctx)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		if failed > 0 {
			return fmt.Errorf("sync: %d of %d destinations failed", failed, dests)
		}
		return nil
	}

	logger.Info("sync scheduler started", "interval", interval, "destinations", dests)
	sched.Start()
	sig := <-stop
	logger.Info("received signal, shutting down", "signal", sig)
	sched.Stop()
	return nil
}

func init() {
	syncCmd.Flags().String("project", "", "only export this project (default: project_id from config, else all)")
	syncCmd.Flags().Bool("once", false, "sync once and exit")
}
