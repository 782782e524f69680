package command

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/trello"
)

// AddCommand links a Trello username to a chat handle. Anyone may add
// themselves; adding someone else needs privilege and fails silently without
// it. The Trello username is validated before the roster is touched.
type AddCommand struct {
	deps *Dependencies
}

func NewAddCommand(deps *Dependencies) *AddCommand {
	return &AddCommand{deps: deps}
}

func (c *AddCommand) Name() string {
	return domain.CommandAdd.String()
}

func (c *AddCommand) Description() string {
	return "Adds a user to the team roster"
}

func (c *AddCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	handle, isSelf := resolveTarget(params, cmdCtx)
	username, _ := params["username"].(string)
	if handle == "" || username == "" {
		return nil
	}

	if !isSelf && !c.deps.IsPrivileged(cmdCtx.Sender) {
		c.deps.Logger.Debug("Unauthorized add dropped",
			zap.String("sender", cmdCtx.Sender),
			zap.String("target", handle),
		)
		return nil
	}

	member, err := c.deps.Trello.FindMember(ctx, username)
	if errors.Is(err, trello.ErrNotFound) {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUserNotFound(username))
	}
	if err != nil {
		c.deps.Logger.Error("Trello member lookup failed",
			zap.String("username", username),
			zap.Error(err),
		)
		c.deps.NotifyAdmins(c.deps.Formatter.CollaboratorUnavailableNotice())
		return nil
	}

	if _, err := c.deps.Roster.Add(ctx, handle, member.Username); err != nil {
		c.deps.Logger.Error("Failed to persist roster", zap.Error(err))
		return err
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUserAdded(member.Username, handle))
}
