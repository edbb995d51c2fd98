package status

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

// Workflow states written at step boundaries. Result-blob presence remains the
// completion signal for clients; this tracker exists so a failed run can be
// told apart from a slow one.
const (
	Pending   = "pending"
	Running   = "running"
	Succeeded = "succeeded"
	Failed    = "failed"
)

const ttl = 24 * time.Hour

type WorkflowStatus struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Stage     string `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

// Service records per-session workflow progress in Redis. All writes are
// best-effort: losing a status update must never fail a workflow step.
type Service interface {
	Set(ctx context.Context, sessionID, state, stage, errMsg string)
	Get(ctx context.Context, sessionID string) (*WorkflowStatus, error)
}

type service struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewService(log *logger.Logger, rdb *goredis.Client) Service {
	return &service{log: log.With("service", "StatusService"), rdb: rdb}
}

func key(sessionID string) string {
	return "fashion:status:" + sessionID
}

func (s *service) Set(ctx context.Context, sessionID, state, stage, errMsg string) {
	if s.rdb == nil || strings.TrimSpace(sessionID) == "" {
		return
	}
	st := WorkflowStatus{
		SessionID: sessionID,
		State:     state,
		Stage:     stage,
		Error:     errMsg,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key(sessionID), raw, ttl).Err(); err != nil {
		s.log.Warn("Status write failed", "session_id", sessionID, "state", state, "error", err)
	}
}

// Get returns (nil, nil) when no status is recorded (unknown session, expired
// TTL, or Redis disabled).
func (s *service) Get(ctx context.Context, sessionID string) (*WorkflowStatus, error) {
	if s.rdb == nil {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var st WorkflowStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
