package workflow

import (
	"sync"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// Phase is the conversation state. Fields on Session are meaningful only for
// the phases that set them; clear() wipes everything at once so no partial
// combination survives a transition to idle.
type Phase int

const (
	// PhaseIdle is the resting state; any text starts a new entry flow.
	PhaseIdle Phase = iota
	// PhaseCollectingPrice waits for a price for the pending product.
	PhaseCollectingPrice
	// PhaseCollectingNotes waits for notes (or a skip token) before commit.
	PhaseCollectingNotes
	// PhaseAIConfirm shows AI-extracted candidates for confirm/select/cancel.
	PhaseAIConfirm
	// PhaseAISelect toggles individual candidates before a partial commit.
	PhaseAISelect
	// PhaseSelectingDeletion waits for display numbers to delete.
	PhaseSelectingDeletion
)

func (p Phase) String() string {
	switch p {
	case PhaseCollectingPrice:
		return "collecting_price"
	case PhaseCollectingNotes:
		return "collecting_notes"
	case PhaseAIConfirm:
		return "ai_confirm"
	case PhaseAISelect:
		return "ai_select"
	case PhaseSelectingDeletion:
		return "selecting_deletion"
	default:
		return "idle"
	}
}

// DeletionTarget names which listing a deletion flow operates on.
type DeletionTarget string

const (
	DeleteToday  DeletionTarget = "today"
	DeleteRecent DeletionTarget = "recent"
)

// Session is the per-conversation state machine instance. Exactly one exists
// per conversation id; messages for one session are processed strictly
// sequentially (busy gating), so fields need no further locking.
type Session struct {
	ID    string
	Phase Phase

	PendingProduct string
	PendingPrice   *float64

	// AICandidates are the extraction results awaiting confirmation;
	// Selected holds toggled candidate indices during PhaseAISelect.
	AICandidates []entity.ParsedRecord
	Selected     map[int]struct{}

	// Displayed is the exact numbered list shown to the user; selection
	// numbers resolve against it and nothing else.
	Displayed []entity.StoredRecord
	Target    DeletionTarget

	busy bool
}

// clear resets every pending field atomically. The session returns to idle.
func (s *Session) clear() {
	s.Phase = PhaseIdle
	s.PendingProduct = ""
	s.PendingPrice = nil
	s.AICandidates = nil
	s.Selected = nil
	s.Displayed = nil
	s.Target = ""
}

// sessions owns all live sessions, keyed by conversation id.
type sessions struct {
	mu sync.Mutex
	m  map[string]*Session
}

func newSessions() *sessions {
	return &sessions{m: make(map[string]*Session)}
}

// acquire returns the session for id, creating it if needed, and marks it
// busy. It fails when a prior event for the same session is still being
// processed: the workflow never applies a second message while an external
// call for that session is outstanding.
func (ss *sessions) acquire(id string) (*Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.m[id]
	if !ok {
		s = &Session{ID: id}
		ss.m[id] = s
	}
	if s.busy {
		return s, false
	}
	s.busy = true
	return s, true
}

func (ss *sessions) release(s *Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s.busy = false
}
