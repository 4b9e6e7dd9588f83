package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"ai_server_builder/perm"
)

// Message is an incoming guild message.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
	Bot       bool
}

// Gateway owns the Discord session: it receives messages and hands out guild handles.
type Gateway struct {
	session *discordgo.Session
	logger  *slog.Logger
}

func NewGateway(token string, logger *slog.Logger) (*Gateway, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("connected to discord", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	return &Gateway{session: s, logger: logger}, nil
}

// OnMessage registers fn for every guild message. discordgo runs each event
// in its own goroutine, so fn may block.
func (g *Gateway) OnMessage(fn func(Message)) {
	g.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.GuildID == "" {
			return
		}
		fn(Message{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			Content:   m.Content,
			Bot:       m.Author.Bot,
		})
	})
}

func (g *Gateway) Open() error  { return g.session.Open() }
func (g *Gateway) Close() error { return g.session.Close() }

// Guild returns a handle on guildID.
func (g *Gateway) Guild(guildID string) Guild {
	return &DiscordGuild{session: g.session, guildID: guildID}
}

// DiscordGuild implements Guild on the Discord REST API.
type DiscordGuild struct {
	session *discordgo.Session
	guildID string
}

func (d *DiscordGuild) ID() string { return d.guildID }

func (d *DiscordGuild) SelfID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

func (d *DiscordGuild) Roles(ctx context.Context) ([]Role, error) {
	roles, err := d.session.GuildRoles(d.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, d.role(r))
	}
	return out, nil
}

func (d *DiscordGuild) role(r *discordgo.Role) Role {
	return Role{
		ID:       r.ID,
		Name:     r.Name,
		Position: r.Position,
		Managed:  r.Managed,
		Everyone: r.ID == d.guildID,
	}
}

func (d *DiscordGuild) Channels(ctx context.Context) ([]Channel, error) {
	channels, err := d.session.GuildChannels(d.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		out = append(out, channel(c))
	}
	return out, nil
}

func channel(c *discordgo.Channel) Channel {
	return Channel{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     kindOf(c.Type),
		ParentID: c.ParentID,
		Position: c.Position,
	}
}

func kindOf(t discordgo.ChannelType) ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return KindText
	case discordgo.ChannelTypeGuildVoice:
		return KindVoice
	case discordgo.ChannelTypeGuildForum:
		return KindForum
	case discordgo.ChannelTypeGuildCategory:
		return KindCategory
	}
	return KindOther
}

func channelType(k ChannelKind) (discordgo.ChannelType, error) {
	switch k {
	case KindText:
		return discordgo.ChannelTypeGuildText, nil
	case KindVoice:
		return discordgo.ChannelTypeGuildVoice, nil
	case KindForum:
		return discordgo.ChannelTypeGuildForum, nil
	case KindCategory:
		return discordgo.ChannelTypeGuildCategory, nil
	}
	return 0, fmt.Errorf("unsupported channel kind %s", k)
}

func (d *DiscordGuild) CreateRole(ctx context.Context, spec RoleSpec) (Role, error) {
	color := spec.Color
	hoist := spec.Hoist
	mentionable := spec.Mentionable
	perms := int64(spec.Permissions)
	r, err := d.session.GuildRoleCreate(d.guildID, &discordgo.RoleParams{
		Name:        spec.Name,
		Color:       &color,
		Hoist:       &hoist,
		Mentionable: &mentionable,
		Permissions: &perms,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return Role{}, err
	}
	return d.role(r), nil
}

func (d *DiscordGuild) DeleteRole(ctx context.Context, roleID string) error {
	return d.session.GuildRoleDelete(d.guildID, roleID, discordgo.WithContext(ctx))
}

func (d *DiscordGuild) MoveRole(ctx context.Context, roleID string, position int) error {
	_, err := d.session.GuildRoleReorder(d.guildID, []*discordgo.Role{{ID: roleID, Position: position}}, discordgo.WithContext(ctx))
	return err
}

func (d *DiscordGuild) HasSelfRole(ctx context.Context, roleID string) (bool, error) {
	m, err := d.session.GuildMember(d.guildID, d.SelfID(), discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, id := range m.Roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (d *DiscordGuild) AssignSelfRole(ctx context.Context, roleID string) error {
	return d.session.GuildMemberRoleAdd(d.guildID, d.SelfID(), roleID, discordgo.WithContext(ctx))
}

func (d *DiscordGuild) CreateChannel(ctx context.Context, spec ChannelSpec) (Channel, error) {
	typ, err := channelType(spec.Kind)
	if err != nil {
		return Channel{}, err
	}
	data := discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     typ,
		ParentID: spec.ParentID,
		Position: spec.Position,
	}
	// voice channels and categories have no topic, slowmode or nsfw flag
	if spec.Kind == KindText || spec.Kind == KindForum {
		data.Topic = spec.Topic
		data.RateLimitPerUser = spec.SlowmodeDelay
		data.NSFW = spec.NSFW
	}
	for _, o := range spec.Overwrites {
		ow := &discordgo.PermissionOverwrite{
			ID:    o.TargetID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: int64(o.Allow),
			Deny:  int64(o.Deny),
		}
		if o.Member {
			ow.Type = discordgo.PermissionOverwriteTypeMember
		}
		data.PermissionOverwrites = append(data.PermissionOverwrites, ow)
	}
	c, err := d.session.GuildChannelCreateComplex(d.guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, err
	}
	return channel(c), nil
}

func (d *DiscordGuild) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

// guildSettings is the PATCH body for Edit. discordgo's GuildParams drops a
// zero explicit_content_filter, which is a valid setting.
type guildSettings struct {
	Name                  string                               `json:"name,omitempty"`
	VerificationLevel     discordgo.VerificationLevel          `json:"verification_level"`
	ExplicitContentFilter discordgo.ExplicitContentFilterLevel `json:"explicit_content_filter"`
	AfkTimeout            int                                  `json:"afk_timeout,omitempty"`
}

func (d *DiscordGuild) Edit(ctx context.Context, s Settings) error {
	endpoint := discordgo.EndpointGuild(d.guildID)
	_, err := d.session.RequestWithBucketID("PATCH", endpoint, guildSettings{
		Name:                  s.Name,
		VerificationLevel:     discordgo.VerificationLevel(s.VerificationLevel),
		ExplicitContentFilter: discordgo.ExplicitContentFilterLevel(s.ExplicitContentFilter),
		AfkTimeout:            s.AFKTimeout,
	}, endpoint, discordgo.WithContext(ctx))
	return err
}

func (d *DiscordGuild) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (d *DiscordGuild) MemberPermissions(ctx context.Context, userID, channelID string) (perm.Permission, error) {
	p, err := d.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return perm.Permission(p), nil
}
