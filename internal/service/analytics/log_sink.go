package analytics

import (
	"context"
	"encoding/json"
	"log"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

// LogSink writes events to the process log. Used when no stream is configured.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, event domain.AnalyticsEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Printf("[ANALYTICS] %s %s", event.Type, payload)
	return nil
}
