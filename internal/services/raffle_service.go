package services

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
)

var (
	ErrEmptyName = errors.New("name must not be blank")
	ErrNoDraw    = errors.New("no draw has been made yet")
)

// Draw is one stored raffle run.
type Draw struct {
	ID      string
	DrawnAt time.Time
	Raffle  *Raffle
}

// RaffleSession holds the data for a single user/tenant.
type RaffleSession struct {
	PrizeNames       []string
	ParticipantNames []string
	LastDraw         *Draw
	LastActivity     time.Time
}

// RaffleService manages raffle sessions, one per tenant.
type RaffleService struct {
	mu       sync.RWMutex
	sessions map[string]*RaffleSession // Key: tenantID
	seed     int64
	now      func() time.Time
}

// NewRaffleService creates a service. A non-zero seed makes the sequence of
// draws repeatable across restarts.
func NewRaffleService(seed int64) *RaffleService {
	return &RaffleService{
		sessions: make(map[string]*RaffleSession),
		seed:     seed,
		now:      time.Now,
	}
}

// session returns the tenant's session, creating it if needed. Callers hold mu.
func (s *RaffleService) session(tenantID string) *RaffleSession {
	sess, exists := s.sessions[tenantID]
	if !exists {
		sess = &RaffleSession{}
		s.sessions[tenantID] = sess
	}
	sess.LastActivity = s.now()
	return sess
}

// AddPrize appends a prize name for a tenant. Duplicates are kept.
func (s *RaffleService) AddPrize(tenantID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(tenantID)
	sess.PrizeNames = append(sess.PrizeNames, name)
	return nil
}

// AddParticipant appends a participant name for a tenant. Duplicates are kept.
func (s *RaffleService) AddParticipant(tenantID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(tenantID)
	sess.ParticipantNames = append(sess.ParticipantNames, name)
	return nil
}

func (s *RaffleService) GetPrizes(tenantID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyNames(s.session(tenantID).PrizeNames)
}

func (s *RaffleService) GetParticipants(tenantID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyNames(s.session(tenantID).ParticipantNames)
}

func copyNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Draw runs a raffle over the tenant's current prizes and participants and
// keeps it as the tenant's last draw.
func (s *RaffleService) Draw(tenantID string) *Draw {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(tenantID)
	var opts []Option
	if s.seed != 0 {
		// Advance the seed so successive draws differ but stay repeatable.
		opts = append(opts, WithRand(rand.New(rand.NewSource(s.seed))))
		s.seed++
	}

	draw := &Draw{
		ID:      uuid.NewString(),
		DrawnAt: s.now(),
		Raffle:  NewRaffle(sess.PrizeNames, sess.ParticipantNames, opts...),
	}
	sess.LastDraw = draw

	logger.Infof("draw %s for tenant %s: %d prizes, %d participants, %d winners, %d unclaimed",
		draw.ID, tenantID, len(sess.PrizeNames), len(sess.ParticipantNames),
		len(draw.Raffle.Winners()), len(draw.Raffle.Unclaimed()))
	return draw
}

// LastDraw returns the tenant's most recent draw.
func (s *RaffleService) LastDraw(tenantID string) (*Draw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[tenantID]
	if !ok || sess.LastDraw == nil {
		return nil, ErrNoDraw
	}
	return sess.LastDraw, nil
}

// CleanUpInactiveSessions removes sessions idle for longer than ttl and
// reports how many were removed.
func (s *RaffleService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for tenantID, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > ttl {
			delete(s.sessions, tenantID)
			removed++
		}
	}
	if removed > 0 {
		logger.Infof("Removed %d inactive sessions", removed)
	}
	return removed
}

// ClearSession removes all data associated with a specific tenant.
func (s *RaffleService) ClearSession(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tenantID)
	logger.Infof("Cleared session for tenant: %s", tenantID)
}
