// Package conversation implements the append-only per-session turn log on
// top of the key-value substrate.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/store"
)

const keyPrefix = "conversation:"

// Log records conversation turns under conversation:{sessionId}:{ts} keys.
// The shared clock guarantees that the response turn of an exchange gets a
// timestamp strictly greater than the input turn's, even within one clock
// tick, so replay order is deterministic.
type Log struct {
	kv    store.KV
	clock *store.Clock
}

// NewLog creates a conversation log over the given substrate.
func NewLog(kv store.KV, clock *store.Clock) (*Log, error) {
	if kv == nil {
		return nil, errors.New("conversation: kv must not be nil")
	}
	if clock == nil {
		return nil, errors.New("conversation: clock must not be nil")
	}
	return &Log{kv: kv, clock: clock}, nil
}

// Append writes one turn and returns it with its assigned timestamp.
func (l *Log) Append(ctx context.Context, turn domain.ConversationTurn) (domain.ConversationTurn, error) {
	if turn.SessionID == "" {
		return domain.ConversationTurn{}, errors.New("conversation: append: session id is required")
	}
	if turn.Kind == "" {
		return domain.ConversationTurn{}, errors.New("conversation: append: turn kind is required")
	}
	ts := l.clock.Next()
	turn.Timestamp = time.UnixMilli(ts).UTC()
	key := keyPrefix + turn.SessionID + ":" + store.FormatTS(ts)
	if err := l.kv.Set(ctx, key, turn); err != nil {
		return domain.ConversationTurn{}, fmt.Errorf("conversation: append: %w", err)
	}
	return turn, nil
}

// ListBySession returns all turns of a session in ascending timestamp
// order. Each call takes a fresh snapshot; nothing is cached.
func (l *Log) ListBySession(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	if sessionID == "" {
		return nil, errors.New("conversation: list: session id is required")
	}
	raws, err := l.kv.GetByPrefix(ctx, keyPrefix+sessionID+":")
	if err != nil {
		return nil, fmt.Errorf("conversation: list session %q: %w", sessionID, err)
	}
	turns := make([]domain.ConversationTurn, 0, len(raws))
	for _, raw := range raws {
		var t domain.ConversationTurn
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("conversation: list session %q: decode turn: %w", sessionID, err)
		}
		turns = append(turns, t)
	}
	sort.Slice(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	return turns, nil
}
