// Package discord implements the channel poller and message sender on top of
// the Discord REST API. Only REST calls are used; no gateway connection is opened.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/logger"
	"github.com/edgard/autoreply/internal/session"
)

// Client polls one account's view of a channel and posts messages to it.
type Client struct {
	session *discordgo.Session
	log     *slog.Logger
}

// NewClient creates a REST client from the Discord configuration. User tokens
// are sent as-is; bot tokens get the "Bot " prefix.
func NewClient(cfg config.DiscordConfig, log *slog.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("discord token cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.TokenType == config.TokenTypeBot && !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	s, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultDiscordTimeout
	}
	s.Client = &http.Client{Timeout: timeout}
	s.MaxRestRetries = 0
	s.ShouldRetryOnRateLimit = false

	return newClient(s, log), nil
}

func newClient(s *discordgo.Session, log *slog.Logger) *Client {
	return &Client{
		session: s,
		log:     log.With("component", "discord_client"),
	}
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*discordgo.User, error) {
	u, err := c.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", describe(err))
	}
	return u, nil
}

// LatestMessage returns the most recent message in channelID, or nil when the
// channel has no messages.
func (c *Client) LatestMessage(ctx context.Context, channelID string) (*session.Message, error) {
	msgs, err := c.session.ChannelMessages(channelID, 1, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for channel %s: %w", channelID, describe(err))
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, nil
	}
	return toMessage(msgs[0]), nil
}

// Send posts content to channelID. When replyTo is non-empty the message is a
// threaded reply referencing that message id; otherwise no reference is sent.
func (c *Client) Send(ctx context.Context, channelID, content, replyTo string) error {
	data := &discordgo.MessageSend{Content: content}
	if replyTo != "" {
		data.Reference = &discordgo.MessageReference{MessageID: replyTo, ChannelID: channelID}
	}

	start := time.Now()
	sent, err := c.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, describe(err))
	}

	c.log.DebugContext(ctx, "Message posted",
		"channel_id", channelID,
		"message_id", sent.ID,
		"reply_to", replyTo,
		"content_preview", logger.Preview(content, 50),
		"duration", time.Since(start))
	return nil
}

func toMessage(m *discordgo.Message) *session.Message {
	msg := &session.Message{
		ID:      m.ID,
		Content: m.Content,
		Type:    int(m.Type),
		System:  IsSystemType(m.Type),
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg
}

// IsSystemType reports whether t is a platform-generated message type such as a
// member join, as opposed to a message a person typed.
func IsSystemType(t discordgo.MessageType) bool {
	switch t {
	case discordgo.MessageTypeDefault, discordgo.MessageTypeReply:
		return false
	default:
		return true
	}
}

// describe adds the HTTP status to REST errors.
func describe(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return fmt.Errorf("status %d: %w", restErr.Response.StatusCode, err)
	}
	return err
}
