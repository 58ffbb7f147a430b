package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OpKind tags an in-flight remote operation. Busy state is a set of
// tagged tokens rather than one global boolean, so a translation in
// flight does not mask or unmask a pending submission.
type OpKind string

const (
	OpSolution      OpKind = "solution"
	OpTranscription OpKind = "transcription"
	OpTranslation   OpKind = "translation"
)

// PendingOp describes one in-flight remote call.
type PendingOp struct {
	Token          string    `json:"token"`
	ConversationID string    `json:"conversationId"`
	Kind           OpKind    `json:"kind"`
	StartedAt      time.Time `json:"startedAt"`
}

// BeginOp registers an in-flight operation and returns its token.
func (s *Service) BeginOp(conversationID string, kind OpKind) string {
	op := PendingOp{
		Token:          uuid.NewString(),
		ConversationID: conversationID,
		Kind:           kind,
		StartedAt:      time.Now().UTC(),
	}

	s.mu.Lock()
	s.pending[op.Token] = op
	s.mu.Unlock()

	return op.Token
}

// EndOp releases an in-flight operation. Releasing an unknown token is a
// no-op, so the release path is safe on every outcome.
func (s *Service) EndOp(token string) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

// PendingOps lists the in-flight operations for one conversation, oldest
// first.
func (s *Service) PendingOps(_ context.Context, conversationID string) []PendingOp {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make([]PendingOp, 0, len(s.pending))
	for _, op := range s.pending {
		if op.ConversationID == conversationID {
			ops = append(ops, op)
		}
	}

	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && ops[j].StartedAt.Before(ops[j-1].StartedAt); j-- {
			ops[j], ops[j-1] = ops[j-1], ops[j]
		}
	}
	return ops
}

// Busy reports whether any operation of the given kinds is in flight for
// the conversation. With no kinds, any pending operation counts.
func (s *Service) Busy(ctx context.Context, conversationID string, kinds ...OpKind) bool {
	for _, op := range s.PendingOps(ctx, conversationID) {
		if len(kinds) == 0 {
			return true
		}
		for _, kind := range kinds {
			if op.Kind == kind {
				return true
			}
		}
	}
	return false
}
