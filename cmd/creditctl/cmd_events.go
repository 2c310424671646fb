package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

type tailOptions struct {
	brokers   []string
	topic     string
	group     string
	eventType string
	tenantID  string
	oldest    bool
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with assessment events",
	}

	opts := tailOptions{}
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print assessment events as they are published",
		Long: `Tail follows the assessment topic and prints one line per event. It starts
at the newest offset unless --from-beginning is set or --group already has a
committed offset. Without --group nothing is committed.

Examples:
  creditctl events tail --brokers localhost:9092
  creditctl events tail --type credit.assessment.failed --tenant 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			out := cmd.OutOrStdout()

			consumer, err := pkgkafka.NewConsumer(
				pkgkafka.Config{Brokers: opts.brokers, ConsumerGroup: opts.group, StartFromOldest: opts.oldest},
				opts.topic,
				func(_ context.Context, msg pkgkafka.Message) error {
					printEvent(out, msg, opts)
					return nil
				},
				logger,
			)
			if err != nil {
				return err
			}
			defer consumer.Close() //nolint:errcheck // closing on exit

			return consumer.Start(ctx)
		},
	}
	tail.Flags().StringSliceVar(&opts.brokers, "brokers", []string{"localhost:9092"}, "Kafka brokers")
	tail.Flags().StringVar(&opts.topic, "topic", "credit.assessment.events", "Assessment events topic")
	tail.Flags().StringVar(&opts.group, "group", "", "Consumer group (ephemeral when empty)")
	tail.Flags().BoolVar(&opts.oldest, "from-beginning", false, "Start from the oldest retained event when no offset is committed")
	tail.Flags().StringVar(&opts.eventType, "type", "", "Only print events of this type")
	tail.Flags().StringVar(&opts.tenantID, "tenant", "", "Only print events of this tenant")

	cmd.AddCommand(tail)
	return cmd
}

// printEvent writes msg as one line unless the filters in opts exclude it.
func printEvent(w io.Writer, msg pkgkafka.Message, opts tailOptions) bool {
	eventType := msg.Headers["event_type"]
	tenantID := msg.Headers["tenant_id"]
	if opts.eventType != "" && eventType != opts.eventType {
		return false
	}
	if opts.tenantID != "" && tenantID != opts.tenantID {
		return false
	}

	fmt.Fprintf(w, "%s %s tenant=%s aggregate=%s %s\n",
		msg.Headers["occurred_at"],
		eventType,
		tenantID,
		string(msg.Key),
		strings.TrimSpace(string(msg.Value)),
	)
	return true
}
