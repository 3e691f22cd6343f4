package records

import (
	"context"
	"time"

	"smartfinance/internal/log"
)

// Flusher writes in-memory state to durable storage.
type Flusher interface {
	Flush(ctx context.Context) error
}

// RunFlusher calls f.Flush every interval until ctx is done, then once more.
// Flush failures are logged and the loop keeps going. It returns nil so it
// can run in an errgroup.
func RunFlusher(ctx context.Context, interval time.Duration, f Flusher, logger *log.Logger) error {
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.WithComponent(log.ComponentRecords)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.Flush(ctx); err != nil {
				logger.ErrorContext(ctx, "Periodic flush failed", log.FieldOperation, log.OpFlush, log.FieldError, err)
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			err := f.Flush(final)
			cancel()
			if err != nil {
				logger.ErrorContext(ctx, "Final flush failed", log.FieldOperation, log.OpFlush, log.FieldError, err)
			}
			return nil
		}
	}
}
