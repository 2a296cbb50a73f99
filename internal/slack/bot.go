package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/command"
)

// Config holds Slack credentials.
type Config struct {
	// AppToken is the app-level token ("xapp-...") for Socket Mode.
	AppToken string
	// BotToken is the bot token ("xoxb-...") for the Web API.
	BotToken string
}

// Validate checks token presence and shape. Slack rejects mismatched token
// types with opaque errors, so catch them before connecting.
func (c *Config) Validate() error {
	if c.AppToken == "" {
		return errors.New("slack app token is not set")
	}
	if !strings.HasPrefix(c.AppToken, "xapp-") {
		return errors.New("slack app token must start with xapp-")
	}
	if c.BotToken == "" {
		return errors.New("slack bot token is not set")
	}
	if !strings.HasPrefix(c.BotToken, "xoxb-") {
		return errors.New("slack bot token must start with xoxb-")
	}
	return nil
}

// Bot runs the Socket Mode event loop.
type Bot struct {
	api    *slack.Client
	socket *socketmode.Client
	router *command.Router
	logger *zap.Logger
}

// New creates a bot over the given router.
func New(cfg *Config, router *command.Router, logger *zap.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slack config: %w", err)
	}
	if router == nil {
		return nil, errors.New("router is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	return &Bot{
		api:    api,
		socket: socketmode.New(api),
		router: router,
		logger: logger,
	}, nil
}

// Run connects to Slack and handles events until the context is canceled
// or the connection fails terminally.
func (b *Bot) Run(ctx context.Context) error {
	go b.handleEvents(ctx)
	return b.socket.RunContext(ctx)
}

func (b *Bot) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				b.logger.Debug("connecting to slack")
			case socketmode.EventTypeConnectionError:
				b.logger.Warn("slack connection error")
			case socketmode.EventTypeConnected:
				b.logger.Info("connected to slack")
			case socketmode.EventTypeSlashCommand:
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				// Ack within Slack's deadline; the real reply is posted
				// separately once the command has been dispatched.
				b.socket.Ack(*evt.Request)
				go b.handleSlashCommand(ctx, cmd)
			}
		}
	}
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	outcome := b.router.Dispatch(ctx, command.Invocation{
		ChannelID: cmd.ChannelID,
		UserID:    cmd.UserID,
		Text:      cmd.Text,
	})

	msg := Render(outcome)
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}

	if _, _, err := b.api.PostMessageContext(ctx, cmd.ChannelID, opts...); err != nil {
		b.logger.Error("failed to post response",
			zap.String("channel", cmd.ChannelID),
			zap.String("outcome", string(outcome.Kind)),
			zap.Error(err),
		)
	}
}
