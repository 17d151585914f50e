package crm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/store"
)

func newStore(t *testing.T) (*Store, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	s, err := NewStore(kv, &store.Clock{})
	require.NoError(t, err)
	return s, kv
}

func TestCreate_AssignsIDAndDefaults(t *testing.T) {
	s, _ := newStore(t)

	rec, err := s.Create(context.Background(), domain.Record{
		Type:         "appointment",
		CustomerName: "Ada Lovelace",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rec.ID, "crm:appointment:"))
	require.Equal(t, "active", rec.Status)
	require.Equal(t, "ai_receptionist", rec.Source)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestCreate_KeepsSuppliedStatus(t *testing.T) {
	s, _ := newStore(t)
	rec, err := s.Create(context.Background(), domain.Record{Type: "appointment", Status: "confirmed"})
	require.NoError(t, err)
	require.Equal(t, "confirmed", rec.Status)
}

func TestCreate_RequiresType(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Create(context.Background(), domain.Record{})
	require.Error(t, err)
}

func TestCreateThenListByType_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, domain.Record{Type: "appointment", CustomerName: "Ada"})
	require.NoError(t, err)

	records, total, err := s.ListByType(ctx, "appointment", 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, records, 1)
	require.Equal(t, created.ID, records[0].ID)
}

func TestListByType_NewestFirstAndTruncated(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := s.Create(ctx, domain.Record{Type: "appointment"})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	records, total, err := s.ListByType(ctx, "appointment", 3)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, records, 3)
	require.Equal(t, ids[4], records[0].ID)
	require.Equal(t, ids[3], records[1].ID)
	require.Equal(t, ids[2], records[2].ID)
}

func TestListByType_PartitionedByType(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, domain.Record{Type: "appointment"})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.Record{Type: "lead"})
	require.NoError(t, err)

	records, total, err := s.ListByType(ctx, "lead", 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, records, 1)
	require.Equal(t, "lead", records[0].Type)
}

func TestListByType_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, domain.Record{Type: "appointment"})
	require.NoError(t, err)

	first, firstTotal, err := s.ListByType(ctx, "appointment", 10)
	require.NoError(t, err)
	second, secondTotal, err := s.ListByType(ctx, "appointment", 10)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, firstTotal, secondTotal)
}

func TestExportSheetsRow_WritesDenormalizedCopy(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	err := s.ExportSheetsRow(ctx, domain.Record{
		Type:            "appointment",
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "(555) 000-0000",
		Service:         "General Consultation",
		AppointmentDate: "tuesday",
		AppointmentTime: "2 pm",
		Notes:           "first visit",
	})
	require.NoError(t, err)

	raws, err := kv.GetByPrefix(ctx, "sheets:appointments:")
	require.NoError(t, err)
	require.Len(t, raws, 1)

	var row domain.SheetsRow
	require.NoError(t, json.Unmarshal(raws[0], &row))
	require.Equal(t, "Ada Lovelace", row.CustomerName)
	require.Equal(t, "ada@example.com", row.Email)
	require.Equal(t, "AI Receptionist", row.Source)
	require.Equal(t, "first visit", row.Notes)
}
