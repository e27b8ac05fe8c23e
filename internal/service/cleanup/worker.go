package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultInterval = time.Hour

// Pruner deletes stored games that ended before cutoff.
type Pruner interface {
	DeleteGamesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker periodically drops games older than the retention period.
type Worker struct {
	Repo      Pruner
	Retention time.Duration
	Interval  time.Duration
	Clock     clockwork.Clock
}

func NewWorker(repo Pruner, retention, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		Repo:      repo,
		Retention: retention,
		Interval:  interval,
		Clock:     clockwork.NewRealClock(),
	}
}

// Start runs a cleanup immediately and then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	ticker := w.Clock.NewTicker(w.Interval)
	log.Printf("[CLEANUP] Background worker started, keeping games for %s", w.Retention)

	go func() {
		defer ticker.Stop()
		w.runCleanup(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Background worker stopped")
				return
			case <-ticker.Chan():
				w.runCleanup(ctx)
			}
		}
	}()
}

func (w *Worker) runCleanup(ctx context.Context) {
	cutoff := w.Clock.Now().Add(-w.Retention)

	deleted, err := w.Repo.DeleteGamesBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[CLEANUP] Error pruning games: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[CLEANUP] Removed %d games that ended before %s", deleted, cutoff.Format(time.RFC3339))
	}
}
