package command

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service"
	"github.com/kapu/interrupt-bot-go/internal/service/duty"
)

// InterruptCommand answers "who is on interrupt duty": roster -> board ->
// interrupt card -> on-call set. Failures along the chain go to the admins;
// the requester only ever sees a successful ping.
type InterruptCommand struct {
	deps *Dependencies
}

func NewInterruptCommand(deps *Dependencies) *InterruptCommand {
	return &InterruptCommand{deps: deps}
}

func (c *InterruptCommand) Name() string {
	return domain.CommandInterrupt.String()
}

func (c *InterruptCommand) Description() string {
	return "Pings the current interrupt pair"
}

func (c *InterruptCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	roster, err := c.deps.Roster.Get(ctx)
	if errors.Is(err, service.ErrRosterAbsent) {
		c.deps.NotifyAdmins(c.deps.Formatter.RosterAbsentNotice())
		return nil
	}
	if err != nil {
		c.deps.Logger.Error("Failed to read roster", zap.Error(err))
		return err
	}

	board, err := c.deps.Duty.ResolveBoard(ctx, roster)
	if errors.Is(err, duty.ErrBoardNotFound) {
		c.deps.NotifyAdmins(c.deps.Formatter.BoardNotFoundNotice(c.deps.Duty.BoardName()))
		return nil
	}
	if err != nil {
		c.deps.Logger.Error("Trello board resolution failed", zap.Error(err))
		c.deps.NotifyAdmins(c.deps.Formatter.CollaboratorUnavailableNotice())
		return nil
	}

	candidate, multiple, err := c.deps.Duty.LocateInterruptCard(ctx, board)
	if errors.Is(err, duty.ErrCardNotFound) {
		c.deps.NotifyAdmins(c.deps.Formatter.CardNotFoundNotice())
		return nil
	}
	if err != nil {
		c.deps.Logger.Error("Interrupt card lookup failed", zap.Error(err))
		c.deps.NotifyAdmins(c.deps.Formatter.CollaboratorUnavailableNotice())
		return nil
	}
	if multiple {
		c.deps.NotifyAdmins(c.deps.Formatter.MultipleCardsNotice())
	}

	handles, err := c.deps.Duty.ResolvePair(ctx, candidate, roster)
	if err != nil {
		c.deps.Logger.Error("Interrupt pair resolution failed", zap.Error(err))
		c.deps.NotifyAdmins(c.deps.Formatter.CollaboratorUnavailableNotice())
		return nil
	}
	if len(handles) == 0 {
		// Roster present but empty: nobody to ping.
		c.deps.NotifyAdmins(c.deps.Formatter.RosterAbsentNotice())
		return nil
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatInterrupt(handles, cmdCtx.Sender))
}
