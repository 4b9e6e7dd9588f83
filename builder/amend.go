package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ai_server_builder/chatfmt"
	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/platform"
)

// Generator produces amendment documents and channel content.
// *generator.Agent implements it.
type Generator interface {
	GenerateChannels(ctx context.Context, description string) ([]generator.ChannelDraft, error)
	GenerateRoles(ctx context.Context, description string) ([]generator.RoleDraft, error)
	GenerateContent(ctx context.Context, channelName, description string) (string, error)
}

// Amender adds channels, roles and content to an existing structure.
// Generation failures fall back to fixed defaults; one failed entry never
// stops the others.
type Amender struct {
	gen    Generator
	pacer  *Pacer
	logger *slog.Logger
}

func NewAmender(gen Generator, pacer *Pacer, logger *slog.Logger) *Amender {
	return &Amender{gen: gen, pacer: pacer, logger: logger}
}

func (a *Amender) AddChannels(ctx context.Context, conv *Conversation, description string) {
	g := conv.Guild
	drafts, err := a.gen.GenerateChannels(ctx, description)
	if err != nil {
		a.logger.Warn("channel generation failed, using default", "guild", g.ID(), "error", err)
		conv.Say(ctx, "⚠️ Could not generate channels, adding a default channel instead.")
		drafts = generator.DefaultChannels()
	}

	conv.Say(ctx, "🔨 Creating new channels...")
	existing, err := g.Channels(ctx)
	if err != nil {
		conv.Sayf(ctx, "❌ Error processing changes: %v", err)
		return
	}
	for _, d := range drafts {
		kind, ok := platform.KindFromString(d.Type)
		if !ok {
			conv.Sayf(ctx, "⚠️ Skipping channel %s: unsupported type %q", d.Name, d.Type)
			continue
		}
		parent, ok := findCategory(existing, d.Category)
		if !ok {
			err := a.pacer.Do(ctx, "create_category", func() error {
				var cerr error
				parent, cerr = g.CreateChannel(ctx, platform.ChannelSpec{Name: d.Category, Kind: platform.KindCategory})
				return cerr
			})
			if err != nil {
				conv.Sayf(ctx, "⚠️ Error creating channel %s: %v", d.Name, err)
				continue
			}
			existing = append(existing, parent)
			conv.Sayf(ctx, "✅ Created category: %s", parent.Name)
		}

		spec := platform.ChannelSpec{Name: d.Name, Kind: kind, ParentID: parent.ID}
		if kind != platform.KindVoice {
			spec.Topic = d.Topic
		}
		err := a.pacer.Do(ctx, "create_"+kind.String(), func() error {
			ch, cerr := g.CreateChannel(ctx, spec)
			if cerr == nil {
				existing = append(existing, ch)
			}
			return cerr
		})
		if err != nil {
			a.logger.Warn("amend channel failed", "guild", g.ID(), "item", d.Name, "error", err)
			conv.Sayf(ctx, "⚠️ Error creating channel %s: %v", d.Name, err)
			continue
		}
		conv.Sayf(ctx, "✅ Created %s channel: %s", kind, d.Name)
	}
}

func (a *Amender) AddRoles(ctx context.Context, conv *Conversation, description string) {
	g := conv.Guild
	drafts, err := a.gen.GenerateRoles(ctx, description)
	if err != nil {
		a.logger.Warn("role generation failed, using default", "guild", g.ID(), "error", err)
		conv.Say(ctx, "⚠️ Could not generate roles, adding a default role instead.")
		drafts = generator.DefaultRoles()
	}

	conv.Say(ctx, "🔨 Creating new roles...")
	for _, d := range drafts {
		if len(d.Permissions.Unknown) > 0 {
			conv.Sayf(ctx, "⚠️ Ignoring unknown permissions for role %s: %s", d.Name, strings.Join(d.Permissions.Unknown, ", "))
		}
		color, err := platform.ParseColor(d.Color)
		if err != nil {
			conv.Sayf(ctx, "⚠️ Error creating role %s: %v", d.Name, err)
			continue
		}
		err = a.pacer.Do(ctx, "create_role", func() error {
			_, cerr := g.CreateRole(ctx, platform.RoleSpec{
				Name:        d.Name,
				Color:       color,
				Hoist:       d.Hoist,
				Mentionable: d.Mentionable,
				Permissions: d.Permissions.Allow,
			})
			return cerr
		})
		if err != nil {
			a.logger.Warn("amend role failed", "guild", g.ID(), "item", d.Name, "error", err)
			conv.Sayf(ctx, "⚠️ Error creating role %s: %v", d.Name, err)
			continue
		}
		conv.Sayf(ctx, "✅ Created role: %s", d.Name)
	}
}

// AddContent generates prose suited to the channel and posts it there.
func (a *Amender) AddContent(ctx context.Context, conv *Conversation, ch platform.Channel, description string) {
	content, err := a.gen.GenerateContent(ctx, ch.Name, description)
	if err != nil {
		a.logger.Warn("content generation failed, using default", "guild", conv.Guild.ID(), "channel", ch.Name, "error", err)
		content = generator.DefaultContent(ch.Name, description)
	}
	for _, seg := range chatfmt.Split(content, chatfmt.SegmentLimit) {
		if err := conv.Guild.SendMessage(ctx, ch.ID, seg); err != nil {
			conv.Sayf(ctx, "⚠️ Could not post content to #%s: %v", ch.Name, err)
			return
		}
	}
	conv.Sayf(ctx, "✅ Content added to #%s", ch.Name)
}

// SelectChannel lists the guild's text channels and asks for one by number.
// With done set, an extra last entry lets the requester stop; ok is false
// then, on timeout, or when there is nothing to choose.
func (a *Amender) SelectChannel(ctx context.Context, conv *Conversation, done bool) (platform.Channel, bool) {
	all, err := conv.Guild.Channels(ctx)
	if err != nil {
		conv.Sayf(ctx, "❌ Error processing changes: %v", err)
		return platform.Channel{}, false
	}
	var text []platform.Channel
	for _, ch := range all {
		if ch.Kind == platform.KindText {
			text = append(text, ch)
		}
	}
	if len(text) == 0 {
		conv.Say(ctx, "⚠️ There are no text channels to add content to.")
		return platform.Channel{}, false
	}

	var sb strings.Builder
	sb.WriteString("Which channel would you like to add content to? (enter the number)")
	for i, ch := range text {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, ch.Name)
	}
	choices := len(text)
	if done {
		choices++
		fmt.Fprintf(&sb, "\n%d. Done adding content", choices)
	}

	reply := conv.Ask(ctx, sb.String(), dialog.Choice(choices), conv.Timeouts.Confirm)
	n := reply.Choice()
	if n == 0 {
		conv.Say(ctx, "No response received, skipping content addition")
		return platform.Channel{}, false
	}
	if n > len(text) {
		return platform.Channel{}, false
	}
	return text[n-1], true
}

func findCategory(channels []platform.Channel, name string) (platform.Channel, bool) {
	for _, ch := range channels {
		if ch.Kind == platform.KindCategory && strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return platform.Channel{}, false
}
