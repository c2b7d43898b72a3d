package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/roomcast/internal/core"
	"github.com/dmarkhas/roomcast/internal/store"
)

// ErrNegativeCount rejects unread snapshots with negative values.
var ErrNegativeCount = errors.New("unread count must be non-negative")

// Broadcaster is the slice of the hub the presence tracker needs.
type Broadcaster interface {
	ToAllExceptSession(sessionID string, event *core.Event)
}

// Service tracks user presence: it reads the roster and persists
// online/offline transitions with their unread-count snapshots.
type Service struct {
	users     store.UserStore
	broadcast Broadcaster
	log       *zerolog.Logger
}

// New creates a presence service.
func New(users store.UserStore, b Broadcaster, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		users:     users,
		broadcast: b,
		log:       logger,
	}
}

// Roster returns the full current roster. It mutates nothing: status
// transitions are driven by explicit logout signals, not connects.
func (s *Service) Roster(ctx context.Context) ([]store.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return users, nil
}

// MarkOffline sets the user offline, records the supplied per-room
// unread snapshot, and persists the result. On success the updated
// roster is re-broadcast to every connection except exceptSession,
// fire-and-forget; broadcast problems are logged, never returned.
func (s *Service) MarkOffline(ctx context.Context, id string, unread map[string]int, exceptSession string) (*store.User, error) {
	for room, n := range unread {
		if n < 0 {
			return nil, fmt.Errorf("room %q: %w", room, ErrNegativeCount)
		}
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	user.Status = store.StatusOffline
	if unread != nil {
		user.UnreadCounts = unread
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user marked offline")

	go s.announceRoster(exceptSession)

	return user, nil
}

func (s *Service) announceRoster(exceptSession string) {
	users, err := s.users.ListUsers(context.Background())
	if err != nil {
		s.log.Warn().Err(err).Msg("roster broadcast skipped")
		return
	}
	s.broadcast.ToAllExceptSession(exceptSession, &core.Event{
		Kind:  core.EventRoster,
		Users: users,
	})
}
