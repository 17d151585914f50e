// Package crm implements the type-partitioned, write-once record store and
// the sheets-shaped export written alongside every booking.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/store"
)

const (
	recordSource = "ai_receptionist"
	sheetsSource = "AI Receptionist"
)

// Store persists records under crm:{type}:{ts} keys. Records are write-once;
// there is no update or delete path.
type Store struct {
	kv    store.KV
	clock *store.Clock
}

// NewStore creates a record store over the given substrate.
func NewStore(kv store.KV, clock *store.Clock) (*Store, error) {
	if kv == nil {
		return nil, errors.New("crm: kv must not be nil")
	}
	if clock == nil {
		return nil, errors.New("crm: clock must not be nil")
	}
	return &Store{kv: kv, clock: clock}, nil
}

// Create assigns id, creation instant and source, then writes the record.
// The id is the storage key itself (type + creation instant); the clock
// keeps same-type ids unique on one store instance.
func (s *Store) Create(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if strings.TrimSpace(rec.Type) == "" {
		return domain.Record{}, errors.New("crm: create: record type is required")
	}
	ts := s.clock.Next()
	key := "crm:" + rec.Type + ":" + store.FormatTS(ts)
	rec.ID = key
	rec.CreatedAt = time.UnixMilli(ts).UTC()
	rec.Source = recordSource
	if rec.Status == "" {
		rec.Status = "active"
	}
	if err := s.kv.Set(ctx, key, rec); err != nil {
		return domain.Record{}, fmt.Errorf("crm: create: %w", err)
	}
	return rec, nil
}

// ListByType returns up to limit records of one type, newest first, plus
// the total number of records of that type before truncation. Order among
// records created in the same instant is not defined.
func (s *Store) ListByType(ctx context.Context, recordType string, limit int) ([]domain.Record, int, error) {
	if strings.TrimSpace(recordType) == "" {
		return nil, 0, errors.New("crm: list: record type is required")
	}
	raws, err := s.kv.GetByPrefix(ctx, "crm:"+recordType+":")
	if err != nil {
		return nil, 0, fmt.Errorf("crm: list %q: %w", recordType, err)
	}
	records := make([]domain.Record, 0, len(raws))
	for _, raw := range raws {
		var r domain.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, 0, fmt.Errorf("crm: list %q: decode record: %w", recordType, err)
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	total := len(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, total, nil
}

// ExportSheetsRow writes the denormalized export copy of an appointment
// under sheets:appointments:{ts}. This is a duplicate write performed on
// every booking, not a view derived from the CRM partition.
func (s *Store) ExportSheetsRow(ctx context.Context, rec domain.Record) error {
	ts := s.clock.Next()
	row := domain.SheetsRow{
		Timestamp:       time.UnixMilli(ts).UTC(),
		CustomerName:    rec.CustomerName,
		Email:           rec.CustomerEmail,
		Phone:           rec.CustomerPhone,
		Service:         rec.Service,
		AppointmentDate: rec.AppointmentDate,
		AppointmentTime: rec.AppointmentTime,
		Notes:           rec.Notes,
		Source:          sheetsSource,
	}
	key := "sheets:appointments:" + store.FormatTS(ts)
	if err := s.kv.Set(ctx, key, row); err != nil {
		return fmt.Errorf("crm: export sheets row: %w", err)
	}
	return nil
}
