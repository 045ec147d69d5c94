package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/auspex/internal/interfaces"
)

// SeenStore persists processed announcement IDs so an announcement is never
// analyzed or alerted twice across restarts.
type SeenStore struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSeenStore creates a seen-announcement store backed by BadgerDB
func NewSeenStore(db *BadgerDB, logger arbor.ILogger) *SeenStore {
	return &SeenStore{
		db:     db,
		logger: logger,
	}
}

// IsSeen reports whether the announcement ID has already been processed
func (s *SeenStore) IsSeen(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var record interfaces.SeenRecord
	err := s.db.Store().Get(id, &record)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up seen record %s: %w", id, err)
	}
	return true, nil
}

// MarkSeen records an announcement ID as processed. Marking the same ID
// twice is not an error; the first-seen time is preserved.
func (s *SeenStore) MarkSeen(ctx context.Context, record interfaces.SeenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("seen record requires an ID")
	}

	var existing interfaces.SeenRecord
	err := s.db.Store().Get(record.ID, &existing)
	if err == nil {
		// Preserve the original first-seen time on re-marking
		record.FirstSeen = existing.FirstSeen
	} else if err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to check existing seen record %s: %w", record.ID, err)
	}

	if record.FirstSeen.IsZero() {
		record.FirstSeen = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to store seen record %s: %w", record.ID, err)
	}

	s.logger.Debug().
		Str("id", record.ID).
		Str("company", record.Company).
		Msg("Announcement marked as seen")

	return nil
}

// Get returns the seen record for an ID, or interfaces.ErrNotSeen
func (s *SeenStore) Get(ctx context.Context, id string) (*interfaces.SeenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record interfaces.SeenRecord
	err := s.db.Store().Get(id, &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotSeen
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seen record %s: %w", id, err)
	}
	return &record, nil
}

// Count returns the number of announcements processed so far
func (s *SeenStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := s.db.Store().Count(&interfaces.SeenRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen records: %w", err)
	}
	return int(count), nil
}
