package command

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service"
)

// RemoveCommand drops a chat handle from the roster. Self-removal needs no
// privilege; removing someone else does and fails silently without it.
// Removing a handle that is not on the roster is a no-op that still replies.
type RemoveCommand struct {
	deps *Dependencies
}

func NewRemoveCommand(deps *Dependencies) *RemoveCommand {
	return &RemoveCommand{deps: deps}
}

func (c *RemoveCommand) Name() string {
	return domain.CommandRemove.String()
}

func (c *RemoveCommand) Description() string {
	return "Removes a user from the team roster"
}

func (c *RemoveCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	handle, isSelf := resolveTarget(params, cmdCtx)
	if handle == "" {
		return nil
	}

	if !isSelf && !c.deps.IsPrivileged(cmdCtx.Sender) {
		c.deps.Logger.Debug("Unauthorized remove dropped",
			zap.String("sender", cmdCtx.Sender),
			zap.String("target", handle),
		)
		return nil
	}

	removed, found, err := c.deps.Roster.Remove(ctx, handle)
	if errors.Is(err, service.ErrRosterAbsent) {
		c.deps.NotifyAdmins(c.deps.Formatter.RosterAbsentNotice())
		return nil
	}
	if err != nil {
		c.deps.Logger.Error("Failed to persist roster", zap.Error(err))
		return err
	}

	if !found {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatNotOnRoster(handle))
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUserRemoved(removed, handle))
}
