package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/frahmantamala/hospital-admin/internal/core/events"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Audit event commands",
	Long:  `Inspect the admin audit trail: list event types and publish test events through the audit logger`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test admin event",
	Long:  `Publish a test admin event to the event bus so the audit log output can be checked`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), logger.LoggerWrapper(), args[0])
	},
}

var listEventTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List admin event types",
	Run: func(cmd *cobra.Command, args []string) {
		printEventTypes(cmd.OutOrStdout())
	},
}

var (
	eventData    string
	eventActorID int64
)

func publishTestEvent(ctx context.Context, lg *slog.Logger, eventType string) error {
	if !slices.Contains(events.AdminEventTypes, eventType) {
		return fmt.Errorf("unknown event type %q, run `event types` for the list", eventType)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bus := events.NewEventBus(lg)
	events.NewAuditLogger(lg).Register(bus)

	testEvent := events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"actor_id": eventActorID,
			"message":  eventData,
			"source":   "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)
	if err := bus.Publish(ctx, testEvent); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Wait(waitCtx); err != nil {
		return fmt.Errorf("wait for audit handler: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func printEventTypes(w io.Writer) {
	for _, t := range events.AdminEventTypes {
		fmt.Fprintln(w, t)
	}
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor", 0, "Actor id recorded on the event")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(listEventTypesCmd)

	rootCmd.AddCommand(eventCmd)
}
