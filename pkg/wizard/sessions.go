package wizard

import (
	"sync"

	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/quote"
)

// pendingQuote is the confirmation-step quote. It is discarded when the
// user steps back or the draft is cleared; confirmation is never
// re-entered with a stale quote.
type pendingQuote struct {
	quote.Quote
	Rate     float64
	Degraded bool
}

// Session is the per-chat wizard state. Created lazily on first
// message, it lives for the life of the process; only the draft resets.
type Session struct {
	mu     sync.Mutex
	ChatID string
	State  Step
	Draft  domain.TransferDraft
	quote  *pendingQuote
}

// reset clears the draft and returns the session to idle.
func (s *Session) reset() {
	s.State = StepIdle
	s.Draft = domain.TransferDraft{}
	s.quote = nil
}

// Sessions is the process-wide session registry keyed by chat identity.
type Sessions struct {
	mu     sync.RWMutex
	byChat map[string]*Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{byChat: make(map[string]*Session)}
}

// GetOrCreate returns the chat's session, creating it on first use.
func (s *Sessions) GetOrCreate(chatID string) *Session {
	s.mu.RLock()
	sess, ok := s.byChat[chatID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byChat[chatID]; ok {
		return sess
	}
	sess = &Session{ChatID: chatID}
	s.byChat[chatID] = sess
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byChat)
}
