package bot

import (
	"sync"
	"time"
)

// conversationStep identifies where a multi-step dialog currently is.
type conversationStep int

const (
	stepAddMatchTeamA conversationStep = iota
	stepAddMatchTeamB
	stepAddMatchKickoff

	stepPointsUser
	stepPointsAmount
	stepPointsReason
)

// conversation is one user's in-flight dialog state. Only one dialog per
// user exists at a time; starting a new one replaces the old.
type conversation struct {
	step conversationStep

	// add match
	teamA string
	teamB string

	// points adjustment
	action       string // "add" or "set"
	targetUserID int64
	amount       int64

	startedAt time.Time
}

// conversationStore keeps per-user dialog state. Telegram updates for one
// user arrive sequentially, but different users are handled concurrently.
type conversationStore struct {
	mu    sync.Mutex
	byUID map[int64]*conversation
}

func newConversationStore() *conversationStore {
	return &conversationStore{
		byUID: make(map[int64]*conversation),
	}
}

func (s *conversationStore) start(userID int64, step conversationStep) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &conversation{step: step, startedAt: time.Now()}
	s.byUID[userID] = c
	return c
}

func (s *conversationStore) get(userID int64) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.byUID[userID]
}

func (s *conversationStore) clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byUID[userID]
	delete(s.byUID, userID)
	return ok
}
