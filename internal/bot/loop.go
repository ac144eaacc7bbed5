package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/database"
	"github.com/edgard/autoreply/internal/generator"
	"github.com/edgard/autoreply/internal/logger"
	"github.com/edgard/autoreply/internal/session"
)

// Platform is the part of the chat platform the loop talks to.
type Platform interface {
	CurrentUser(ctx context.Context) (*discordgo.User, error)
	LatestMessage(ctx context.Context, channelID string) (*session.Message, error)
	Send(ctx context.Context, channelID, content, replyTo string) error
}

// Journal records processed exchanges.
type Journal interface {
	SaveExchange(ctx context.Context, exchange *database.Exchange) error
}

// Loop polls one channel and answers every eligible message.
type Loop struct {
	platform  Platform
	generator generator.Generator
	state     *session.State
	journal   Journal
	logger    *slog.Logger

	channelID  string
	source     string
	language   string
	readDelay  time.Duration
	replyDelay time.Duration
	replyMode  bool
}

// NewLoop creates a loop for the configured channel. journal may be nil.
func NewLoop(
	log *slog.Logger,
	cfg *config.Config,
	platform Platform,
	gen generator.Generator,
	state *session.State,
	journal Journal,
) *Loop {
	if log == nil {
		log = logger.Discard()
	}
	return &Loop{
		platform:   platform,
		generator:  gen,
		state:      state,
		journal:    journal,
		logger:     log.With("component", "loop", "channel_id", cfg.Discord.ChannelID),
		channelID:  cfg.Discord.ChannelID,
		source:     cfg.Generation.Source,
		language:   cfg.Loop.Language,
		readDelay:  cfg.Loop.ReadDelay,
		replyDelay: cfg.Loop.ReplyDelay,
		replyMode:  cfg.Loop.ReplyMode,
	}
}

// Run resolves the bot identity and then polls until ctx is done.
// A failed identity lookup is returned immediately; every later error is logged
// and the next cycle starts after the read delay.
func (l *Loop) Run(ctx context.Context) error {
	user, err := l.platform.CurrentUser(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to resolve bot identity", "error", err)
		return fmt.Errorf("failed to resolve bot identity: %w", err)
	}
	l.state.SetBotUserID(user.ID)
	l.logger.InfoContext(ctx, "Polling channel",
		"bot_user_id", user.ID,
		"username", user.Username,
		"read_delay", l.readDelay,
		"reply_delay", l.replyDelay,
		"reply_mode", l.replyMode,
		"source", l.source,
		"language", l.language,
	)

	for {
		if err := l.cycle(ctx); err != nil {
			return err
		}
		l.logger.DebugContext(ctx, "Waiting before next poll", "delay", l.readDelay)
		if err := sleep(ctx, l.readDelay); err != nil {
			return err
		}
	}
}

// cycle runs one poll step. It only returns an error when ctx is done.
func (l *Loop) cycle(ctx context.Context) error {
	msg, err := l.platform.LatestMessage(ctx, l.channelID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.ErrorContext(ctx, "Failed to fetch latest message", "error", err)
		return nil
	}
	if msg == nil || !l.state.Eligible(msg) {
		return nil
	}

	log := l.logger.With("message_id", msg.ID, "author_id", msg.AuthorID)
	log.InfoContext(ctx, "Received message", "content_preview", logger.Preview(msg.Content, 80))

	exchange := &database.Exchange{
		ChannelID: l.channelID,
		MessageID: msg.ID,
		AuthorID:  msg.AuthorID,
		Content:   msg.Content,
		Source:    l.source,
		ReplyMode: l.replyMode,
	}

	reply, err := l.generator.Generate(ctx, l.state, msg.Content, l.language)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, generator.ErrNoReply) {
			log.WarnContext(ctx, "No reply generated, skipping message", "error", err)
		} else {
			log.ErrorContext(ctx, "Failed to generate reply", "error", err)
		}
		l.state.Advance(msg.ID)
		exchange.Error = err.Error()
		l.record(ctx, exchange)
		return nil
	}
	exchange.Reply = reply
	log.InfoContext(ctx, "Generated reply", "reply_preview", logger.Preview(reply, 80))

	log.InfoContext(ctx, "Waiting before reply", "delay", l.replyDelay)
	if err := sleep(ctx, l.replyDelay); err != nil {
		return err
	}

	replyTo := ""
	if l.replyMode {
		replyTo = msg.ID
	}
	sendErr := l.platform.Send(ctx, l.channelID, reply, replyTo)
	l.state.Advance(msg.ID)

	if sendErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.ErrorContext(ctx, "Failed to send reply", "error", sendErr)
		exchange.Error = sendErr.Error()
	} else {
		exchange.Sent = true
		log.InfoContext(ctx, "Sent reply", "threaded", replyTo != "")
	}
	l.record(ctx, exchange)
	return nil
}

func (l *Loop) record(ctx context.Context, exchange *database.Exchange) {
	if l.journal == nil {
		return
	}
	if err := l.journal.SaveExchange(ctx, exchange); err != nil {
		l.logger.WarnContext(ctx, "Failed to journal exchange", "message_id", exchange.MessageID, "error", err)
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
