package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/lifedash/internal/models"
)

func (c *Cli) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the sync daemon (realtime, reconnect, focus on SIGUSR1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			focus := focusSignals(ctx)

			unsubscribeStatus := c.app.Bus().SubscribeToSyncStatus(func(status models.SyncStatus) {
				c.logger.Info("Sync status", "status", status.String())
			})
			defer unsubscribeStatus()

			unsubscribe := c.app.Bus().Subscribe(func() {
				c.logger.Debug("Local data changed")
			})
			defer unsubscribe()

			c.logger.Info("Watching for changes",
				"user_id", c.app.Store().Identity().UserID,
				"pid", os.Getpid())

			return c.app.Run(ctx, focus)
		},
	}
}

// focusSignals delivers an event on every SIGUSR1 until ctx is done. Returns
// nil where the platform has no such signal.
func focusSignals(ctx context.Context) <-chan struct{} {
	if focusSignal == nil {
		return nil
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, focusSignal)

	focus := make(chan struct{}, 1)
	go func() {
		defer signal.Stop(sigCh)
		defer close(focus)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				select {
				case focus <- struct{}{}:
				default:
				}
			}
		}
	}()

	return focus
}
