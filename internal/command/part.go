package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
)

// PartCommand makes the bot leave the current room. Privileged; unauthorized
// attempts are silently dropped.
type PartCommand struct {
	deps *Dependencies
}

func NewPartCommand(deps *Dependencies) *PartCommand {
	return &PartCommand{deps: deps}
}

func (c *PartCommand) Name() string {
	return domain.CommandPart.String()
}

func (c *PartCommand) Description() string {
	return "Leaves the current room"
}

func (c *PartCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if !c.deps.IsPrivileged(cmdCtx.Sender) {
		c.deps.Logger.Debug("Unauthorized part dropped",
			zap.String("sender", cmdCtx.Sender),
			zap.String("room", cmdCtx.Room),
		)
		return nil
	}

	c.deps.Logger.Info("Leaving room",
		zap.String("room", cmdCtx.Room),
		zap.String("requested_by", cmdCtx.Sender),
	)
	return c.deps.LeaveRoom(cmdCtx.Room)
}
