package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull remote changes and replay pending pushes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.app.Store().Identity().Guest {
				c.io.Println("Guest data is local only; run 'lifedash login' to sync.")
				return nil
			}

			c.io.Println("=== Synchronization ===")

			result, replayed, err := c.app.Sync(cmd.Context())
			if err != nil {
				return fmt.Errorf("synchronization failed: %w", err)
			}
			if result.Offline {
				c.io.Println("Server is unreachable; changes stay queued.")
				return nil
			}

			c.io.Printf("Pulled from server: %d rows\n", result.Fetched)
			c.io.Printf("Merged locally:     %d rows\n", result.Merged)
			if result.Skipped > 0 {
				c.io.Printf("Skipped (errors):   %d\n", result.Skipped)
			}
			c.io.Printf("Pushed pending:     %d keys\n", replayed)
			c.io.Println("✓ Synchronization completed")
			return nil
		},
	}
}

func (c *Cli) newRolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Run the daily rollover now (no-op if it already ran today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.Rollover(cmd.Context())
			if err != nil {
				return err
			}

			if c.opts.JSON {
				return c.printJSON(report)
			}

			if report.Skipped {
				c.io.Printf("Rollover already done for %s\n", report.Today)
				return nil
			}

			c.io.Printf("✓ Rolled over %s -> %s\n", report.Closing, report.Today)
			if report.ArchivedMonth != "" {
				c.io.Printf("Archived month:   %s\n", report.ArchivedMonth)
			}
			if report.FullReset {
				c.io.Printf("Tasks archived:   %d\n", report.TasksArchived)
				c.io.Printf("Tasks carried:    %d\n", report.TasksCarried)
				c.io.Printf("Tasks missed:     %d\n", report.TasksMissed)
				c.io.Printf("Habits snapshot:  %d\n", report.HabitsSnapshotted)
				c.io.Printf("Pruned entries:   %d\n", report.Pruned)
			}
			return nil
		},
	}
}
