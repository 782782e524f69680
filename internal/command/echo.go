package command

import (
	"context"

	"github.com/kapu/interrupt-bot-go/internal/domain"
)

type EchoCommand struct {
	deps *Dependencies
}

func NewEchoCommand(deps *Dependencies) *EchoCommand {
	return &EchoCommand{deps: deps}
}

func (c *EchoCommand) Name() string {
	return domain.CommandEcho.String()
}

func (c *EchoCommand) Description() string {
	return "Replies back with the given text"
}

func (c *EchoCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	text, _ := params["text"].(string)
	if text == "" {
		return nil
	}
	return c.deps.SendMessage(cmdCtx.Room, text)
}
