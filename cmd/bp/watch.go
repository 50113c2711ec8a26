package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/events"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream board and diagram events from the event bus",
	GroupID: "board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		project, _ := cmd.Flags().GetString("project")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.NATSURL == "" {
			return errors.New("BLUEPRINT_NATS_URL is not set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		return watchEvents(ctx, sub, topic, firstNonEmpty(project, cfg.ProjectID), cmd.OutOrStdout())
	},
}

// watchEvents prints every event received on topic until ctx is done or
// the subscription closes. A non-empty project drops board events of other
// projects; diagram events have no project and always pass.
func watchEvents(ctx context.Context, sub events.Subscriber, topic, project string, w io.Writer) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if project != "" && msg.ProjectID != "" && msg.ProjectID != project {
				continue
			}
			printEvent(w, msg)
		}
	}
}

func printEvent(w io.Writer, msg events.Message) {
	if jsonOutput {
		fmt.Fprintln(w, string(msg.Data))
		return
	}
	ev, err := events.Decode(msg.Topic, msg.Data)
	if errors.Is(err, events.ErrUnknownTopic) {
		fmt.Fprintln(w, ui.RenderMuted(msg.Topic), string(msg.Data))
		return
	}
	if err != nil {
		fmt.Fprintln(w, ui.RenderWarn("unreadable event:"), string(msg.Data))
		return
	}

	switch e := ev.(type) {
	case events.BoardTaskCreated:
		printTaskEvent(w, "created", e.Task)
	case events.BoardTaskUpdated:
		printTaskEvent(w, "moved", e.Task)
	case events.BatchExported:
		line := fmt.Sprintf("%s %d tasks %s", ui.RenderAccent("batch"), len(e.TaskIDs), ui.RenderMuted(e.ProjectID))
		if n := len(e.Errors); n > 0 {
			line += " " + ui.RenderError(fmt.Sprintf("%d errors", n))
		}
		fmt.Fprintln(w, line)
	case events.DiagramsParsed:
		fmt.Fprintf(w, "%s %d parsed, %d errors\n", ui.RenderAccent("diagrams"), e.Count, len(e.Errors))
	}
}

func printTaskEvent(w io.Writer, verb string, t *model.BoardTask) {
	if t == nil {
		fmt.Fprintln(w, ui.RenderWarn(verb+" event without task"))
		return
	}
	fmt.Fprintf(w, "%s %s %s %s\n", ui.RenderAccent(t.ID), verb, t.Status, ui.RenderMuted(t.Title))
}

func init() {
	watchCmd.Flags().String("topic", events.TopicAll, "subject to subscribe to")
	watchCmd.Flags().String("project", "", "only board events of this project (default: project_id from config)")
}
