package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) newLoginCmd() *cobra.Command {
	var userID, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a server-issued access token",
		Long: "Sign in as --user. The token is issued by 'lifedash-server token'.\n" +
			"Local data of the previous identity stays on this device.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				var err error
				token, err = c.io.ReadPassword("Access token: ")
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
			}

			id, err := c.app.Login(cmd.Context(), userID, token)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			c.io.Printf("✓ Signed in as %s\n", id.UserID)
			if !c.app.Engine().Online() {
				c.io.Println("Server is unreachable; changes will sync once it is back.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&token, "token", "", "access token (prompted when empty)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func (c *Cli) newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Switch to a new local-only guest identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := c.app.Guest(cmd.Context())
			if err != nil {
				return err
			}
			c.io.Printf("✓ Guest session %s (data stays on this device)\n", id.UserID)
			return nil
		},
	}
}

func (c *Cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session and continue as a guest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			before := c.app.Store().Identity()
			id, err := c.app.Logout(cmd.Context())
			if err != nil {
				return err
			}
			c.io.Printf("✓ Signed out %s, now guest %s\n", before.UserID, id.UserID)
			return nil
		},
	}
}

type statusOutput struct {
	UserID     string   `json:"user_id"`
	Guest      bool     `json:"guest"`
	SyncStatus string   `json:"sync_status"`
	Online     bool     `json:"online"`
	Pending    []string `json:"pending"`
	Entities   []string `json:"entities"`
	LastPull   string   `json:"last_pull,omitempty"`
}

func (c *Cli) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show identity, sync status and pending changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := statusOutput{
				UserID:     st.Identity.UserID,
				Guest:      st.Identity.Guest,
				SyncStatus: st.SyncStatus.String(),
				Online:     st.Online,
				Pending:    st.Pending,
				Entities:   st.Keys,
			}
			if !st.LastPull.IsZero() {
				out.LastPull = st.LastPull.Format(time.RFC3339)
			}

			if c.opts.JSON {
				return c.printJSON(out)
			}

			c.io.Println("=== Status ===")
			if out.Guest {
				c.io.Printf("Identity:    guest %s (local only)\n", out.UserID)
			} else {
				c.io.Printf("Identity:    %s\n", out.UserID)
			}
			c.io.Printf("Sync status: %s\n", out.SyncStatus)
			c.io.Printf("Online:      %t\n", out.Online)
			if out.LastPull != "" {
				c.io.Printf("Last pull:   %s\n", out.LastPull)
			} else {
				c.io.Println("Last pull:   never")
			}
			c.io.Printf("Entities:    %d\n", len(out.Entities))

			if len(out.Pending) > 0 {
				c.io.Printf("⚠️  Pending sync: %d key(s): %v\n", len(out.Pending), out.Pending)
			} else {
				c.io.Println("✓ Nothing waiting to be synchronized")
			}
			return nil
		},
	}
}
