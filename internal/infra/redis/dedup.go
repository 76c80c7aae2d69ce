package redis

import (
	"context"
	"fmt"
	"time"
)

// DuplicateMarker remembers recently seen external transaction ids so
// duplicate deliveries can be counted and logged. Best effort only: a
// redis outage degrades to "never seen", and the store's constraints
// still make reprocessing harmless.
type DuplicateMarker struct {
	client RedisClient
	ttl    time.Duration
}

func NewDuplicateMarker(client RedisClient, ttl time.Duration) *DuplicateMarker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DuplicateMarker{client: client, ttl: ttl}
}

// MarkSeen records the delivery and reports whether it was already known.
func (d *DuplicateMarker) MarkSeen(ctx context.Context, source, transactionID string) (bool, error) {
	key := fmt.Sprintf("webhook_seen:%s:%s", source, transactionID)
	set, err := d.client.SetNX(ctx, key, 1, d.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}
