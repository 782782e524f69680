package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/storage"
	pkgerrors "github.com/kapu/interrupt-bot-go/pkg/errors"
)

const rosterKey = "interrupt:roster"

// ErrRosterAbsent means no roster has ever been persisted. This is distinct
// from a present-but-empty roster: callers notify admins on absence but
// proceed normally on empty.
var ErrRosterAbsent = errors.New("roster: not persisted")

// RosterStore persists the team roster as a single JSON blob in the KV.
// Mutations are read-modify-write over the whole blob; concurrent mutations
// are last-writer-wins, same as the original bot. Each write is atomic, so a
// reader never sees a half-written roster.
type RosterStore struct {
	kv     storage.KV
	logger *zap.Logger
}

func NewRosterStore(kv storage.KV, logger *zap.Logger) *RosterStore {
	return &RosterStore{
		kv:     kv,
		logger: logger,
	}
}

// Get reads the persisted roster. Returns ErrRosterAbsent when no roster has
// ever been saved.
func (s *RosterStore) Get(ctx context.Context) (*domain.Roster, error) {
	data, err := s.kv.Get(ctx, rosterKey)
	if errors.Is(err, storage.ErrAbsent) {
		return nil, ErrRosterAbsent
	}
	if err != nil {
		return nil, err
	}

	roster := domain.NewRoster()
	if err := json.Unmarshal(data, roster); err != nil {
		s.logger.Error("Failed to decode persisted roster", zap.Error(err))
		return nil, pkgerrors.NewStorageError("roster decode failed", "get", rosterKey, err)
	}
	return roster, nil
}

// Put overwrites the persisted roster wholesale.
func (s *RosterStore) Put(ctx context.Context, roster *domain.Roster) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return pkgerrors.NewStorageError("roster encode failed", "put", rosterKey, err)
	}
	return s.kv.Set(ctx, rosterKey, data)
}

// Add maps a chat handle to a Trello username and persists the result. A
// missing roster is created on first add.
func (s *RosterStore) Add(ctx context.Context, handle, username string) (*domain.Roster, error) {
	roster, err := s.Get(ctx)
	if errors.Is(err, ErrRosterAbsent) {
		roster = domain.NewRoster()
	} else if err != nil {
		return nil, err
	}

	next := roster.With(handle, username)
	if err := s.Put(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("Roster entry added",
		zap.String("handle", handle),
		zap.String("trello_username", username),
		zap.Int("size", next.Len()),
	)
	return next, nil
}

// Remove drops a chat handle from the roster and persists the result. It
// reports the Trello username that was mapped, and whether the handle was
// present at all: removing an absent handle succeeds but found is false.
func (s *RosterStore) Remove(ctx context.Context, handle string) (removed string, found bool, err error) {
	roster, err := s.Get(ctx)
	if err != nil {
		return "", false, err
	}

	next, removed, found := roster.Without(handle)
	if !found {
		return "", false, nil
	}

	if err := s.Put(ctx, next); err != nil {
		return "", false, err
	}

	s.logger.Info("Roster entry removed",
		zap.String("handle", handle),
		zap.String("trello_username", removed),
		zap.Int("size", next.Len()),
	)
	return removed, true, nil
}
