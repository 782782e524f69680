package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/adapter"
	"github.com/kapu/interrupt-bot-go/internal/chat"
	"github.com/kapu/interrupt-bot-go/internal/command"
	"github.com/kapu/interrupt-bot-go/internal/config"
	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service"
)

const commandTimeout = 30 * time.Second

// EventStream is the inbound gateway connection the bot listens on.
type EventStream interface {
	OnMessage(callback chat.MessageCallback)
	Connect(ctx context.Context) error
	Disconnect() error
}

type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	GatewayWS      EventStream
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter
	Roster         *service.RosterStore
	Dispatcher     command.Dispatcher
	NotifyAdmins   func(message string)
}

// Bot wires the gateway event stream to the command dispatcher. Each inbound
// message is handled to completion before the next one for its room.
type Bot struct {
	deps *Dependencies
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies must not be nil")
	}
	if deps.GatewayWS == nil {
		return nil, fmt.Errorf("gateway event stream is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	return &Bot{deps: deps}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.deps.GatewayWS.OnMessage(func(message *chat.Message) {
		b.handleMessage(ctx, message)
	})

	if err := b.deps.GatewayWS.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}

	b.checkRosterOnStartup(ctx)

	<-ctx.Done()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	return b.deps.GatewayWS.Disconnect()
}

// checkRosterOnStartup mirrors the original bot's on-load hook: if no roster
// has ever been persisted, the admins hear about it before the first query.
func (b *Bot) checkRosterOnStartup(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	_, err := b.deps.Roster.Get(checkCtx)
	if errors.Is(err, service.ErrRosterAbsent) {
		b.deps.Logger.Warn("No team roster persisted yet")
		b.deps.NotifyAdmins(b.deps.Formatter.RosterAbsentNotice())
		return
	}
	if err != nil {
		b.deps.Logger.Error("Startup roster check failed", zap.Error(err))
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *chat.Message) {
	if message == nil || message.Sender == b.deps.Config.Bot.Name {
		return
	}

	parsed := b.deps.MessageAdapter.ParseMessage(message)
	if parsed.Type == domain.CommandUnknown {
		return
	}

	b.deps.Logger.Debug("Dispatching command",
		zap.String("type", parsed.Type.String()),
		zap.String("room", message.Room),
		zap.String("sender", message.Sender),
	)

	cmdCtx := domain.NewCommandContext(message.Room, message.Sender, message.Msg)

	execCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if _, err := b.deps.Dispatcher.Publish(execCtx, cmdCtx, command.CommandEvent{
		Type:   parsed.Type,
		Params: parsed.Params,
	}); err != nil {
		b.deps.Logger.Error("Command execution failed",
			zap.String("type", parsed.Type.String()),
			zap.String("room", message.Room),
			zap.Error(err),
		)
	}
}
