package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrNotSeen is returned when a seen-store lookup finds no record for an ID.
var ErrNotSeen = errors.New("announcement not seen")

// SeenRecord marks one processed announcement ID with its first-seen time.
type SeenRecord struct {
	ID        string    `json:"id" badgerhold:"key"`
	Company   string    `json:"company"`
	Headline  string    `json:"headline"`
	FirstSeen time.Time `json:"first_seen"`
}

// SeenStore is the durable set of announcement IDs already processed.
type SeenStore interface {
	IsSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, record SeenRecord) error
	Get(ctx context.Context, id string) (*SeenRecord, error)
	Count(ctx context.Context) (int, error)
}
