package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/store"
)

func newLog(t *testing.T) *Log {
	t.Helper()
	l, err := NewLog(store.NewMemory(), &store.Clock{})
	require.NoError(t, err)
	return l
}

func TestNewLog_Validates(t *testing.T) {
	_, err := NewLog(nil, &store.Clock{})
	require.Error(t, err)
	_, err = NewLog(store.NewMemory(), nil)
	require.Error(t, err)
}

func TestAppend_RequiresSessionAndKind(t *testing.T) {
	l := newLog(t)
	_, err := l.Append(context.Background(), domain.ConversationTurn{Kind: domain.TurnCustomerInput})
	require.Error(t, err)
	_, err = l.Append(context.Background(), domain.ConversationTurn{SessionID: "s1"})
	require.Error(t, err)
}

func TestAppendThenList_ReturnsTurnsInAppendOrder(t *testing.T) {
	l := newLog(t)
	ctx := context.Background()

	input, err := l.Append(ctx, domain.ConversationTurn{
		SessionID: "s1",
		Message:   "I'd like to book an appointment",
		Kind:      domain.TurnCustomerInput,
	})
	require.NoError(t, err)

	response, err := l.Append(ctx, domain.ConversationTurn{
		SessionID: "s1",
		Message:   "Perfect! I've scheduled your appointment...",
		Kind:      domain.TurnAIResponse,
	})
	require.NoError(t, err)

	// The response turn must carry a strictly greater timestamp even when
	// both writes land in the same clock tick.
	require.True(t, response.Timestamp.After(input.Timestamp))

	turns, err := l.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, domain.TurnCustomerInput, turns[0].Kind)
	require.Equal(t, domain.TurnAIResponse, turns[1].Kind)
}

func TestListBySession_IsolatesSessions(t *testing.T) {
	l := newLog(t)
	ctx := context.Background()

	_, err := l.Append(ctx, domain.ConversationTurn{SessionID: "s1", Kind: domain.TurnCustomerInput, Message: "hi"})
	require.NoError(t, err)
	_, err = l.Append(ctx, domain.ConversationTurn{SessionID: "s10", Kind: domain.TurnCustomerInput, Message: "other"})
	require.NoError(t, err)

	turns, err := l.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, "hi", turns[0].Message)
}

func TestListBySession_Idempotent(t *testing.T) {
	l := newLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.Append(ctx, domain.ConversationTurn{SessionID: "s1", Kind: domain.TurnCustomerInput, Message: "m"})
		require.NoError(t, err)
	}

	first, err := l.ListBySession(ctx, "s1")
	require.NoError(t, err)
	second, err := l.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
