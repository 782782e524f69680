package command

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service"
)

type TeamCommand struct {
	deps *Dependencies
}

func NewTeamCommand(deps *Dependencies) *TeamCommand {
	return &TeamCommand{deps: deps}
}

func (c *TeamCommand) Name() string {
	return domain.CommandTeam.String()
}

func (c *TeamCommand) Description() string {
	return "Lists the team roster"
}

func (c *TeamCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	roster, err := c.deps.Roster.Get(ctx)
	if errors.Is(err, service.ErrRosterAbsent) {
		c.deps.NotifyAdmins(c.deps.Formatter.RosterAbsentNotice())
		return nil
	}
	if err != nil {
		c.deps.Logger.Error("Failed to read roster", zap.Error(err))
		return err
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRoster(roster))
}
