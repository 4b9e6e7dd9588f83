package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ai_server_builder/chatfmt"
	"ai_server_builder/dialog"
	"ai_server_builder/platform"
)

// Timeouts bound each kind of interactive wait.
type Timeouts struct {
	// Confirm covers yes/no questions and numbered menus.
	Confirm time.Duration
	// Text covers free-text descriptions.
	Text time.Duration
	// Content covers channel content, which takes longer to type.
	Content time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{Confirm: 30 * time.Second, Text: 60 * time.Second, Content: 120 * time.Second}
}

// Conversation is one requester talking to the bot in one channel of a guild.
type Conversation struct {
	Guild       platform.Guild
	ChannelID   string
	RequesterID string
	Asker       dialog.Asker
	Timeouts    Timeouts
	Logger      *slog.Logger
}

func (c *Conversation) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Say posts text to the conversation channel, split into segments that fit
// a single message. Send failures are logged only.
func (c *Conversation) Say(ctx context.Context, text string) {
	c.SayIn(ctx, c.ChannelID, text)
}

// SayIn posts text to another channel of the same guild.
func (c *Conversation) SayIn(ctx context.Context, channelID, text string) {
	for _, seg := range chatfmt.Split(text, chatfmt.SegmentLimit) {
		if err := c.Guild.SendMessage(ctx, channelID, seg); err != nil {
			c.logger().Warn("send message failed", "guild", c.Guild.ID(), "channel", channelID, "error", err)
			return
		}
	}
}

func (c *Conversation) Sayf(ctx context.Context, format string, args ...any) {
	c.Say(ctx, fmt.Sprintf(format, args...))
}

// Ask posts question and waits for the requester's reply.
func (c *Conversation) Ask(ctx context.Context, question string, accept dialog.Predicate, timeout time.Duration) dialog.Reply {
	reply := c.Asker.Ask(ctx, dialog.Prompt{
		ChannelID: c.ChannelID,
		UserID:    c.RequesterID,
		Accept:    accept,
		Timeout:   timeout,
		Announce:  func() { c.Say(ctx, question) },
	})
	dialogReplies.WithLabelValues(reply.Outcome.String()).Inc()
	c.logger().Debug("dialog reply", "guild", c.Guild.ID(), "outcome", reply.Outcome.String())
	return reply
}

// YesNo asks a yes/no question with the confirm timeout.
func (c *Conversation) YesNo(ctx context.Context, question string) dialog.Reply {
	return c.Ask(ctx, question, dialog.YesNo, c.Timeouts.Confirm)
}

// Proceed asks whether to go on after a failed step. Both "no" and a
// timeout stop the operation.
func (c *Conversation) Proceed(ctx context.Context, question string) bool {
	reply := c.YesNo(ctx, question)
	switch reply.Outcome {
	case dialog.TimedOut:
		c.Say(ctx, "No response received, stopping setup.")
		return false
	case dialog.Answered:
		if strings.EqualFold(strings.TrimSpace(reply.Content), "no") {
			c.Say(ctx, "🛑 Setup stopped.")
			return false
		}
	}
	return true
}
