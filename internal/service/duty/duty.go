// Package duty implements the interrupt-resolution engine: finding the team
// board through the roster, locating the canonical "Interrupt" card, and
// deriving the current on-call set from the card's list.
package duty

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/trello"
)

// InterruptCardName is the sentinel card title, matched case-sensitively.
const InterruptCardName = "Interrupt"

var (
	// ErrBoardNotFound means no roster member's boards contained the
	// configured board name.
	ErrBoardNotFound = errors.New("duty: team board not found")

	// ErrCardNotFound means the resolved board has no card named exactly
	// InterruptCardName on any list.
	ErrCardNotFound = errors.New("duty: interrupt card not found")
)

// CardCandidate is an interrupt card together with its owning list, as seen
// at location time. The list is re-read at pair-resolution time since humans
// move cards between queries.
type CardCandidate struct {
	CardID string
	ListID string
}

type Service struct {
	api       trello.API
	boardName string
	logger    *zap.Logger
}

func NewService(api trello.API, boardName string, logger *zap.Logger) *Service {
	return &Service{
		api:       api,
		boardName: boardName,
		logger:    logger,
	}
}

// BoardName returns the configured team board name.
func (s *Service) BoardName() string {
	return s.boardName
}

// ResolveBoard probes each roster member's Trello boards in roster order and
// returns the first board whose name equals the configured board name. The
// probe short-circuits on the first match; a member unknown to Trello is
// skipped, since the roster may be ahead of (or behind) the Trello org.
func (s *Service) ResolveBoard(ctx context.Context, roster *domain.Roster) (*trello.Board, error) {
	for _, entry := range roster.Entries() {
		boards, err := s.api.MemberBoards(ctx, entry.TrelloUsername)
		if errors.Is(err, trello.ErrNotFound) {
			s.logger.Warn("Roster member unknown to Trello, skipping",
				zap.String("trello_username", entry.TrelloUsername),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, board := range boards {
			if board.Name == s.boardName {
				return &board, nil
			}
		}
	}

	return nil, ErrBoardNotFound
}

// LocateInterruptCard scans every list on the board and collects all cards
// named exactly InterruptCardName. Zero candidates is ErrCardNotFound. More
// than one is non-fatal: the first in list-then-card enumeration order wins
// and multiple reports true so the caller can warn the admins. Enumeration
// order is whatever Trello returns, unmodified.
func (s *Service) LocateInterruptCard(ctx context.Context, board *trello.Board) (candidate *CardCandidate, multiple bool, err error) {
	lists, err := s.api.BoardLists(ctx, board.ID)
	if err != nil {
		return nil, false, err
	}

	var candidates []CardCandidate
	for _, list := range lists {
		cards, err := s.api.ListCards(ctx, list.ID)
		if err != nil {
			return nil, false, err
		}
		for _, card := range cards {
			if card.Name == InterruptCardName {
				candidates = append(candidates, CardCandidate{
					CardID: card.ID,
					ListID: list.ID,
				})
			}
		}
	}

	if len(candidates) == 0 {
		return nil, false, ErrCardNotFound
	}
	if len(candidates) > 1 {
		s.logger.Warn("Multiple interrupt cards on board",
			zap.String("board", board.Name),
			zap.Int("count", len(candidates)),
		)
	}

	return &candidates[0], len(candidates) > 1, nil
}

// ResolvePair derives the current on-call set from the interrupt card. The
// card is re-fetched so its current list is used, then every member assigned
// to any card on that list is mapped back through the roster in encounter
// order (card order, then per-card member order). Duplicates are kept; a
// Trello member with no roster entry is skipped. An empty result falls back
// to the whole roster in roster order.
func (s *Service) ResolvePair(ctx context.Context, candidate *CardCandidate, roster *domain.Roster) ([]string, error) {
	card, err := s.api.FindCard(ctx, candidate.CardID)
	if err != nil {
		return nil, err
	}

	cards, err := s.api.ListCards(ctx, card.IDList)
	if err != nil {
		return nil, err
	}

	var handles []string
	for _, c := range cards {
		for _, memberID := range c.IDMembers {
			member, err := s.api.FindMember(ctx, memberID)
			if errors.Is(err, trello.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if handle, ok := roster.HandleFor(member.Username); ok {
				handles = append(handles, handle)
			}
		}
	}

	if len(handles) == 0 {
		return roster.Handles(), nil
	}
	return handles, nil
}
