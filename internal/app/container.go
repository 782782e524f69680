package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/adapter"
	"github.com/kapu/interrupt-bot-go/internal/bot"
	"github.com/kapu/interrupt-bot-go/internal/chat"
	"github.com/kapu/interrupt-bot-go/internal/command"
	"github.com/kapu/interrupt-bot-go/internal/config"
	"github.com/kapu/interrupt-bot-go/internal/service"
	"github.com/kapu/interrupt-bot-go/internal/service/duty"
	"github.com/kapu/interrupt-bot-go/internal/storage"
	"github.com/kapu/interrupt-bot-go/internal/trello"
	"github.com/kapu/interrupt-bot-go/internal/util"
)

// Container bundles assembled services for constructing the bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	botDeps *bot.Dependencies
	closers []func()
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close releases held resources (storage connections).
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and returns a container capable
// of creating a fully-wired bot. Heavy initialization (storage connections)
// happens here so bot.NewBot stays focused on orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Messaging primitives
	gatewayClient := chat.NewClient(cfg.Gateway.BaseURL, logger)
	gatewayWS := chat.NewWebSocket(cfg.Gateway.WSURL, 5, 5*time.Second, logger)
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Name)
	formatter := adapter.NewResponseFormatter()

	// Durable storage for the roster
	var kv storage.KV
	switch cfg.Storage.Backend {
	case "postgres":
		pg, pgErr := storage.NewPostgresKV(storage.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", pgErr)
		}
		kv = pg
	default:
		rd, rdErr := storage.NewRedisKV(storage.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if rdErr != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", rdErr)
		}
		kv = rd
	}
	closers = append(closers, func() {
		_ = kv.Close()
	})

	rosterStore := service.NewRosterStore(kv, logger)

	// Trello and the duty engine
	trelloClient := trello.NewClient(trello.ClientConfig{
		DeveloperPublicKey: cfg.Trello.DeveloperPublicKey,
		MemberToken:        cfg.Trello.MemberToken,
		RequestTimeout:     cfg.Trello.RequestTimeout,
	}, logger)
	dutySvc := duty.NewService(trelloClient, cfg.Trello.BoardName, logger)

	notifier := bot.NewAdminNotifier(gatewayClient, cfg.Bot.Admins, logger)

	isPrivileged := func(userID string) bool {
		return util.Contains(cfg.Bot.Admins, userID) || util.Contains(cfg.Bot.Team, userID)
	}

	cmdDeps := &command.Dependencies{
		Roster:    rosterStore,
		Duty:      dutySvc,
		Trello:    trelloClient,
		Formatter: formatter,
		SendMessage: func(room, message string) error {
			sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return gatewayClient.SendMessage(sendCtx, room, message)
		},
		NotifyAdmins: notifier.Notify,
		IsPrivileged: isPrivileged,
		LeaveRoom: func(room string) error {
			partCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return gatewayClient.LeaveRoom(partCtx, room)
		},
		Logger: logger,
	}

	registry := command.NewRegistry()
	registry.Register(command.NewEchoCommand(cmdDeps))
	registry.Register(command.NewInterruptCommand(cmdDeps))
	registry.Register(command.NewTeamCommand(cmdDeps))
	registry.Register(command.NewAddCommand(cmdDeps))
	registry.Register(command.NewRemoveCommand(cmdDeps))
	registry.Register(command.NewPartCommand(cmdDeps))
	dispatcher := command.NewSequentialDispatcher(registry, command.Normalize)

	logger.Info("Command registry assembled", zap.Int("handlers", registry.Count()))

	deps := &bot.Dependencies{
		Config:         cfg,
		Logger:         logger,
		GatewayWS:      gatewayWS,
		MessageAdapter: messageAdapter,
		Formatter:      formatter,
		Roster:         rosterStore,
		Dispatcher:     dispatcher,
		NotifyAdmins:   notifier.Notify,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		botDeps: deps,
		closers: closers,
	}, nil
}
