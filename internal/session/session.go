// Package session holds the transient, per-user staging records of in-progress
// workflows. Nothing here is persisted; a restart drops every session.
package session

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
)

var (
	ErrNotFound = errors.New("no active session")
	ErrExpired  = errors.New("session expired")
	// ErrBusy is returned by Begin while another workflow is still active.
	ErrBusy = errors.New("another workflow is in progress")
	// ErrStale is returned by Save when the session was ended or replaced
	// after the caller read it.
	ErrStale = errors.New("stale session")
)

type Flow string

const (
	FlowOrder  Flow = "order"
	FlowDesign Flow = "design"
)

type Step string

const (
	StepOrderName        Step = "order.name"
	StepOrderShirtNumber Step = "order.shirt_number"
	StepOrderShirtName   Step = "order.shirt_name"
	StepOrderSize        Step = "order.size"
	StepOrderReceipt     Step = "order.receipt"

	StepDesignName  Step = "design.name"
	StepDesignDesc  Step = "design.desc"
	StepDesignImage Step = "design.image"
)

type OrderDraft struct {
	FullName    string
	ShirtNumber *int
	ShirtName   string
	Size        models.Size
}

// Complete reports whether every field before the receipt is staged.
func (d OrderDraft) Complete() bool {
	return d.FullName != "" && d.ShirtNumber != nil && d.ShirtName != "" && d.Size != ""
}

type DesignDraft struct {
	Name           string
	Description    string
	HasDescription bool
}

func (d DesignDraft) Complete() bool {
	return d.Name != "" && d.HasDescription
}

type Session struct {
	UserID int64
	Flow   Flow
	Step   Step
	Gen    uint64

	Order  OrderDraft
	Design DesignDraft

	StartedAt time.Time
	TouchedAt time.Time
}

// Store is a goroutine-safe map of user ID to session with lazy TTL expiry.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	gen      uint64
	sessions map[int64]Session
}

func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{ttl: ttl, now: now, sessions: map[int64]Session{}}
}

func (s *Store) expired(sess Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.TouchedAt) > s.ttl
}

// Begin starts a workflow for userID at the given step. An expired session is
// replaced; a live one makes Begin fail with ErrBusy.
func (s *Store) Begin(userID int64, flow Flow, step Step) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if cur, ok := s.sessions[userID]; ok && !s.expired(cur, now) {
		return cur, ErrBusy
	}
	s.gen++
	sess := Session{
		UserID:    userID,
		Flow:      flow,
		Step:      step,
		Gen:       s.gen,
		StartedAt: now,
		TouchedAt: now,
	}
	s.sessions[userID] = sess
	return sess, nil
}

// Get returns the live session for userID. An expired session is removed and
// returned together with ErrExpired so callers can name the workflow.
func (s *Store) Get(userID int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, userID)
		return sess, ErrExpired
	}
	return sess, nil
}

// Save stores sess if it is still the current generation for its user.
func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[sess.UserID]
	if !ok || cur.Gen != sess.Gen {
		return ErrStale
	}
	sess.TouchedAt = s.now()
	s.sessions[sess.UserID] = sess
	return nil
}

// End removes the session for userID and returns it, if any.
func (s *Store) End(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return sess, ok
}

// EndIf removes the session only if it is still generation gen. It reports
// whether the session was removed.
func (s *Store) EndIf(userID int64, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[userID]
	if !ok || cur.Gen != gen {
		return false
	}
	delete(s.sessions, userID)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
