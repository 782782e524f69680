package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/adapter"
	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service/duty"
	"github.com/kapu/interrupt-bot-go/internal/trello"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// RosterStore is the persisted roster surface the handlers consume.
type RosterStore interface {
	Get(ctx context.Context) (*domain.Roster, error)
	Add(ctx context.Context, handle, username string) (*domain.Roster, error)
	Remove(ctx context.Context, handle string) (removed string, found bool, err error)
}

// DutyResolver is the interrupt-resolution engine surface.
type DutyResolver interface {
	BoardName() string
	ResolveBoard(ctx context.Context, roster *domain.Roster) (*trello.Board, error)
	LocateInterruptCard(ctx context.Context, board *trello.Board) (*duty.CardCandidate, bool, error)
	ResolvePair(ctx context.Context, candidate *duty.CardCandidate, roster *domain.Roster) ([]string, error)
}

// MemberFinder validates Trello usernames when adding roster entries.
type MemberFinder interface {
	FindMember(ctx context.Context, idOrUsername string) (*trello.Member, error)
}

type Dependencies struct {
	Roster    RosterStore
	Duty      DutyResolver
	Trello    MemberFinder
	Formatter *adapter.ResponseFormatter

	// SendMessage replies in the requester's room. NotifyAdmins fans a notice
	// out to every configured admin over the direct-message side channel.
	SendMessage  func(room, message string) error
	NotifyAdmins func(message string)

	// IsPrivileged reports whether a caller may mutate other users' roster
	// entries or make the bot leave a room.
	IsPrivileged func(userID string) bool

	LeaveRoom func(room string) error

	Logger *zap.Logger
}

// resolveTarget maps an add/remove target param to a chat handle. "me" means
// the sender; anything else is an explicit @handle, which needs privilege.
func resolveTarget(params map[string]any, cmdCtx *domain.CommandContext) (handle string, isSelf bool) {
	target, _ := params["target"].(string)
	return adapter.ResolveTarget(target, cmdCtx.Sender)
}
