package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"receptionist-agent/internal/domain"
	"receptionist-agent/internal/engine"
)

// State of the backend connection as seen by the coordinator.
type State string

const (
	StateChecking State = "checking"
	StateOnline   State = "online"
	StateOffline  State = "offline"
)

// Reply sources. Local replies come from the in-process engine and are
// never persisted anywhere.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Reply is the answer to one customer message, identical in shape whether
// it came from the backend or the local fallback.
type Reply struct {
	Response   string
	Action     string
	FormData   *domain.Record
	Confidence float64
	Source     string
}

type connEvent int

const (
	probeSucceeded connEvent = iota
	probeFailed
	remoteFailed
)

// transition is the single place connection state changes. Offline is
// sticky: only a successful probe, via Retry, leaves it.
func transition(s State, e connEvent) State {
	switch e {
	case probeSucceeded:
		return StateOnline
	case probeFailed, remoteFailed:
		return StateOffline
	}
	return s
}

// backend is the remote surface the coordinator depends on.
type backend interface {
	Health(ctx context.Context) error
	ProcessConversation(ctx context.Context, message, sessionID string, customer *domain.CustomerInfo) (Reply, error)
}

// Coordinator routes messages to the backend while it is reachable and
// silently completes them with the local engine once it is not. Both paths
// produce the same reply text because they run the same rules.
type Coordinator struct {
	remote backend
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	sessionID string
}

// NewCoordinator starts in the checking state with a fresh session id; the
// first Send or an explicit Check resolves the state.
func NewCoordinator(remote backend, logger *slog.Logger) (*Coordinator, error) {
	if remote == nil {
		return nil, errors.New("client: remote must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		remote:    remote,
		logger:    logger,
		state:     StateChecking,
		sessionID: newSessionID(),
	}, nil
}

func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

// State returns the current connection state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the id under which this coordinator's messages are
// logged on the backend.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Check probes the backend and resolves the connection state.
func (c *Coordinator) Check(ctx context.Context) State {
	err := c.remote.Health(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("backend unreachable, switching to local processing", "error", err)
		c.state = transition(c.state, probeFailed)
	} else {
		c.state = transition(c.state, probeSucceeded)
	}
	return c.state
}

// Retry re-probes the backend on explicit request. It is the only way out
// of the offline state.
func (c *Coordinator) Retry(ctx context.Context) State {
	return c.Check(ctx)
}

// Send answers one customer message. While online it calls the backend; a
// backend failure mid-conversation completes that same message locally and
// pins the coordinator offline. The caller sees a reply either way.
func (c *Coordinator) Send(ctx context.Context, message string, customer *domain.CustomerInfo) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, errors.New("client: message must not be empty")
	}

	state := c.State()
	if state == StateChecking {
		state = c.Check(ctx)
	}
	if state == StateOffline {
		return c.local(message, customer), nil
	}

	reply, err := c.remote.ProcessConversation(ctx, message, c.SessionID(), customer)
	if err != nil {
		c.logger.Warn("backend request failed, completing message locally", "error", err)
		c.mu.Lock()
		c.state = transition(c.state, remoteFailed)
		c.mu.Unlock()
		return c.local(message, customer), nil
	}
	return reply, nil
}

// local runs the shared conversation rules in process. No turn or record
// is written; the reply shape matches the remote one exactly.
func (c *Coordinator) local(message string, customer *domain.CustomerInfo) Reply {
	result := engine.Process(message, customer)
	return Reply{
		Response:   result.Response,
		Action:     result.Action,
		FormData:   result.FormData,
		Confidence: result.Confidence,
		Source:     SourceLocal,
	}
}
