package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/internal/validation"
)

var entityList = strings.Join(models.AllEntities, ", ")

func (c *Cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity>",
		Short: "Print an entity as JSON (" + entityList + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateEntityKey(args[0]); err != nil {
				return err
			}

			value, err := c.app.Data().Entity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(value)
		},
	}
}

func (c *Cli) newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <entity> <json|@file|->",
		Short: "Replace an entity with the given JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateEntityKey(args[0]); err != nil {
				return err
			}

			payload, err := readPayload(args[1], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
			if !json.Valid(payload) {
				return fmt.Errorf("payload for %s is not valid JSON", args[0])
			}

			if err := c.app.Data().SetEntity(cmd.Context(), args[0], payload); err != nil {
				return err
			}
			c.io.Printf("✓ %s saved\n", args[0])
			return nil
		},
	}
}
