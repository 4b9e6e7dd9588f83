// Package builder stages plans and applies them to a guild: the bot's own
// scaffold, the provisioning run, post-build amendments and teardown.
package builder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/platform"
)

type Options struct {
	RoleName    string
	ChannelName string
	PacingDelay time.Duration
	Timeouts    Timeouts
}

// Builder bundles the pieces one provisioning session needs. They share a
// single pacer so every mutating call from the process is spaced.
type Builder struct {
	Scaffold    *Scaffold
	Provisioner *Provisioner
	Amender     *Amender

	timeouts Timeouts
	logger   *slog.Logger
}

func New(gen Generator, opts Options, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeouts == (Timeouts{}) {
		opts.Timeouts = DefaultTimeouts()
	}
	pacer := NewPacer(opts.PacingDelay)
	scaffold := NewScaffold(opts.RoleName, opts.ChannelName, pacer, logger)
	return &Builder{
		Scaffold:    scaffold,
		Provisioner: NewProvisioner(scaffold, pacer, logger),
		Amender:     NewAmender(gen, pacer, logger),
		timeouts:    opts.Timeouts,
		logger:      logger,
	}
}

// Conversation starts a conversation with requester in channelID.
func (b *Builder) Conversation(g platform.Guild, channelID, requesterID string, asker dialog.Asker) *Conversation {
	return &Conversation{
		Guild:       g,
		ChannelID:   channelID,
		RequesterID: requesterID,
		Asker:       asker,
		Timeouts:    b.timeouts,
		Logger:      b.logger,
	}
}

// Confirm applies plan, then offers amendments and finally the scaffold
// teardown. It reports whether the apply itself succeeded.
func (b *Builder) Confirm(ctx context.Context, conv *Conversation, plan generator.Plan) bool {
	if !b.Provisioner.Apply(ctx, conv, plan) {
		applies.WithLabelValues("aborted").Inc()
		return false
	}
	applies.WithLabelValues("success").Inc()

	b.amendLoop(ctx, conv)

	reply := conv.YesNo(ctx, "🧹 Would you like me to clean up the bot's channel and role? (yes/no)")
	switch {
	case reply.Outcome == dialog.TimedOut:
		conv.Say(ctx, "⏳ No response received. Bot resources will be preserved.")
	case reply.Yes():
		conv.Say(ctx, "🧹 Removing the bot's channel and role. Enjoy your new server!")
		b.Scaffold.Teardown(ctx, conv)
	default:
		conv.Say(ctx, "✅ Bot resources will be preserved. Enjoy your new server!")
	}
	return true
}

const amendMenu = "Would you like to make any additional changes? Choose an option:\n" +
	"1. Add more channels\n" +
	"2. Add more roles\n" +
	"3. Add channel content (rules, info, etc.)\n" +
	"4. No more changes (done)"

func (b *Builder) amendLoop(ctx context.Context, conv *Conversation) {
	for {
		reply := conv.Ask(ctx, amendMenu, dialog.Choice(4), conv.Timeouts.Confirm)
		switch reply.Choice() {
		case 0:
			conv.Say(ctx, "No response received, moving on")
			return
		case 1:
			if desc, ok := b.describe(ctx, conv, "Please describe the additional channels you'd like to add:"); ok {
				b.Amender.AddChannels(ctx, conv, desc)
			}
		case 2:
			if desc, ok := b.describe(ctx, conv, "Please describe the additional roles you'd like to add:"); ok {
				b.Amender.AddRoles(ctx, conv, desc)
			}
		case 3:
			b.contentLoop(ctx, conv)
		case 4:
			return
		}
	}
}

func (b *Builder) describe(ctx context.Context, conv *Conversation, question string) (string, bool) {
	reply := conv.Ask(ctx, question, dialog.AnyText, conv.Timeouts.Text)
	if reply.Outcome == dialog.TimedOut {
		conv.Say(ctx, "No response received, moving on")
		return "", false
	}
	return reply.Content, true
}

func (b *Builder) contentLoop(ctx context.Context, conv *Conversation) {
	for {
		ch, ok := b.Amender.SelectChannel(ctx, conv, true)
		if !ok {
			return
		}
		reply := conv.Ask(ctx, "What content would you like to add to #"+ch.Name+"? (type your content or 'skip' to skip)",
			dialog.AnyText, conv.Timeouts.Content)
		if reply.Outcome == dialog.TimedOut {
			conv.Say(ctx, "No response received, skipping content addition")
			return
		}
		if !isSkip(reply.Content) {
			b.Amender.AddContent(ctx, conv, ch, reply.Content)
		}

		more := conv.YesNo(ctx, "Would you like to add content to another channel? (yes/no)")
		if more.Outcome == dialog.TimedOut {
			conv.Say(ctx, "No response received, skipping content addition")
			return
		}
		if !more.Yes() {
			return
		}
	}
}

func isSkip(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "skip")
}
