package builder

import (
	"context"
	"fmt"
	"log/slog"

	"ai_server_builder/perm"
	"ai_server_builder/platform"
)

const (
	DefaultRoleName    = "🤖 Server Builder"
	DefaultChannelName = "bot-commands"

	scaffoldColor = 0x3498DB
	scaffoldTopic = "Channel for bot commands and server setup"
)

// Overwrites of the scaffold channel for everyone and for the bot member.
var (
	scaffoldEveryone = perm.Of(perm.ViewChannel, perm.SendMessages)
	scaffoldSelf     = perm.Of(perm.ViewChannel, perm.SendMessages, perm.ManageMessages)
)

// scaffoldPermissions is everything the provisioner needs on its own role.
var scaffoldPermissions = perm.Administrator |
	perm.ManageGuild | perm.ManageRoles | perm.ManageChannels | perm.ManageMessages | perm.ManageWebhooks |
	perm.ViewChannel | perm.SendMessages | perm.EmbedLinks | perm.AttachFiles | perm.ReadMessageHistory |
	perm.MentionEveryone | perm.UseExternalEmojis | perm.AddReactions |
	perm.Connect | perm.Speak | perm.MuteMembers | perm.DeafenMembers | perm.MoveMembers | perm.UseVAD |
	perm.CreateInstantInvite | perm.ManageNicknames | perm.ManageEmojis | perm.ViewAuditLog |
	perm.KickMembers | perm.BanMembers

// Scaffold owns the bot's operating role and channel in a guild.
type Scaffold struct {
	RoleName    string
	ChannelName string

	pacer  *Pacer
	logger *slog.Logger
}

func NewScaffold(roleName, channelName string, pacer *Pacer, logger *slog.Logger) *Scaffold {
	if roleName == "" {
		roleName = DefaultRoleName
	}
	if channelName == "" {
		channelName = DefaultChannelName
	}
	return &Scaffold{RoleName: roleName, ChannelName: channelName, pacer: pacer, logger: logger}
}

// EnsureRole finds or creates the bot role, makes sure the bot holds it and
// moves it up the hierarchy. Only the move may fail softly.
func (s *Scaffold) EnsureRole(ctx context.Context, conv *Conversation) (platform.Role, error) {
	g := conv.Guild
	roles, err := g.Roles(ctx)
	if err != nil {
		conv.Sayf(ctx, "❌ Failed to read roles: %v", err)
		return platform.Role{}, fmt.Errorf("%w: list roles: %v", ErrScaffoldRole, err)
	}

	role, found := platform.FindRole(roles, s.RoleName)
	if !found {
		err := s.pacer.Do(ctx, "create_role", func() error {
			var cerr error
			role, cerr = g.CreateRole(ctx, platform.RoleSpec{
				Name:        s.RoleName,
				Color:       scaffoldColor,
				Hoist:       true,
				Mentionable: true,
				Permissions: scaffoldPermissions,
			})
			return cerr
		})
		if err != nil {
			conv.Sayf(ctx, "❌ Failed to create bot role: %v", err)
			return platform.Role{}, fmt.Errorf("%w: create: %v", ErrScaffoldRole, err)
		}
		s.logger.Info("created scaffold role", "guild", g.ID(), "role", role.ID)
		conv.Say(ctx, "✅ Created bot role with necessary permissions")
	}

	held, err := g.HasSelfRole(ctx, role.ID)
	if err != nil {
		conv.Sayf(ctx, "❌ Failed to assign bot role: %v", err)
		return platform.Role{}, fmt.Errorf("%w: check membership: %v", ErrScaffoldRole, err)
	}
	if !held {
		if err := s.pacer.Do(ctx, "assign_role", func() error { return g.AssignSelfRole(ctx, role.ID) }); err != nil {
			conv.Sayf(ctx, "❌ Failed to assign bot role: %v", err)
			return platform.Role{}, fmt.Errorf("%w: assign: %v", ErrScaffoldRole, err)
		}
		conv.Say(ctx, "✅ Assigned bot role to bot")
	}

	s.reposition(ctx, conv, role)
	return role, nil
}

// reposition puts the role one rank below the highest non-everyone role.
func (s *Scaffold) reposition(ctx context.Context, conv *Conversation, role platform.Role) {
	g := conv.Guild
	roles, err := g.Roles(ctx)
	if err != nil {
		conv.Sayf(ctx, "⚠️ Failed to position bot role: %v", err)
		return
	}
	highest, current := 0, role.Position
	for _, r := range roles {
		if r.Everyone {
			continue
		}
		if r.Position > highest {
			highest = r.Position
		}
		if r.ID == role.ID {
			current = r.Position
		}
	}
	target := max(highest-1, 1)
	if current == target {
		return
	}
	if err := s.pacer.Do(ctx, "move_role", func() error { return g.MoveRole(ctx, role.ID, target) }); err != nil {
		s.logger.Warn("scaffold role reposition failed", "guild", g.ID(), "error", err)
		conv.Sayf(ctx, "⚠️ Failed to position bot role: %v", err)
		return
	}
	conv.Say(ctx, "✅ Positioned bot role correctly")
}

// EnsureChannel finds or creates the bot channel: readable and writable by
// everyone, with message management for the bot itself.
func (s *Scaffold) EnsureChannel(ctx context.Context, conv *Conversation) (platform.Channel, error) {
	g := conv.Guild
	channels, err := g.Channels(ctx)
	if err != nil {
		conv.Sayf(ctx, "❌ Failed to read channels: %v", err)
		return platform.Channel{}, fmt.Errorf("%w: list channels: %v", ErrScaffoldChannel, err)
	}
	if ch, ok := platform.FindChannel(channels, s.ChannelName); ok {
		return ch, nil
	}

	var ch platform.Channel
	err = s.pacer.Do(ctx, "create_channel", func() error {
		var cerr error
		ch, cerr = g.CreateChannel(ctx, platform.ChannelSpec{
			Name:  s.ChannelName,
			Kind:  platform.KindText,
			Topic: scaffoldTopic,
			Overwrites: []platform.Overwrite{
				// the everyone role shares the guild's ID
				{TargetID: g.ID(), Allow: scaffoldEveryone.Allow},
				{TargetID: g.SelfID(), Member: true, Allow: scaffoldSelf.Allow},
			},
		})
		return cerr
	})
	if err != nil {
		conv.Sayf(ctx, "❌ Failed to create or access bot channel: %v", err)
		return platform.Channel{}, fmt.Errorf("%w: create: %v", ErrScaffoldChannel, err)
	}
	s.logger.Info("created scaffold channel", "guild", g.ID(), "channel", ch.ID)
	return ch, nil
}

// Teardown removes the bot channel, then the bot role. Each deletion is
// attempted on its own; failures are reported as warnings.
func (s *Scaffold) Teardown(ctx context.Context, conv *Conversation) {
	g := conv.Guild

	channels, err := g.Channels(ctx)
	if err != nil {
		conv.Sayf(ctx, "⚠️ Could not delete bot channel: %v", err)
	} else if ch, ok := platform.FindChannel(channels, s.ChannelName); ok {
		if err := s.pacer.Do(ctx, "delete_channel", func() error { return g.DeleteChannel(ctx, ch.ID) }); err != nil {
			s.logger.Warn("scaffold channel delete failed", "guild", g.ID(), "error", err)
			conv.Sayf(ctx, "⚠️ Could not delete bot channel: %v", err)
		}
	}

	roles, err := g.Roles(ctx)
	if err != nil {
		conv.Sayf(ctx, "⚠️ Could not delete bot role: %v", err)
		return
	}
	if role, ok := platform.FindRole(roles, s.RoleName); ok {
		if err := s.pacer.Do(ctx, "delete_role", func() error { return g.DeleteRole(ctx, role.ID) }); err != nil {
			s.logger.Warn("scaffold role delete failed", "guild", g.ID(), "error", err)
			conv.Sayf(ctx, "⚠️ Could not delete bot role: %v", err)
		}
	}
}
