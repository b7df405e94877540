package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
)

// InvalidationEvent is broadcast on the cache-invalidate topic so every
// replica drops its local results.
type InvalidationEvent struct {
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// PurgeLocal drops local entries only and returns how many were removed.
func (c *QueryCache) PurgeLocal() int {
	return c.local.Purge()
}

// InvalidationHandler purges the local level of c for each message. The
// shared level is flushed once by whoever published the event.
func InvalidationHandler(c *QueryCache) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[InvalidationEvent](value)
		if err != nil {
			return fmt.Errorf("decoding invalidation event: %w", err)
		}
		purged := c.PurgeLocal()
		c.logger.Info("cache invalidated by event",
			"reason", event.Reason,
			"source", event.Source,
			"local_entries", purged,
		)
		return nil
	}
}
