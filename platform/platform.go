// Package platform is the boundary to the chat platform's resource API:
// roles, categories, channels, guild settings and messages.
package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ai_server_builder/perm"
)

type ChannelKind int

const (
	KindText ChannelKind = iota + 1
	KindVoice
	KindForum
	KindCategory
	KindOther
)

func (k ChannelKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindVoice:
		return "voice"
	case KindForum:
		return "forum"
	case KindCategory:
		return "category"
	}
	return "other"
}

// KindFromString maps plan channel types; ok is false for unsupported types.
func KindFromString(s string) (ChannelKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, true
	case "voice":
		return KindVoice, true
	case "forum":
		return KindForum, true
	}
	return 0, false
}

type Role struct {
	ID       string
	Name     string
	Position int
	Managed  bool
	Everyone bool
}

type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	ParentID string
	Position int
}

type RoleSpec struct {
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
	Permissions perm.Permission
}

// Overwrite is a per-role (or per-member) permission exception on a channel.
type Overwrite struct {
	TargetID string
	Member   bool
	Allow    perm.Permission
	Deny     perm.Permission
}

type ChannelSpec struct {
	Name          string
	Kind          ChannelKind
	ParentID      string
	Topic         string
	Position      int
	SlowmodeDelay int
	NSFW          bool
	Overwrites    []Overwrite
}

type Settings struct {
	Name                  string
	VerificationLevel     int
	ExplicitContentFilter int
	AFKTimeout            int
}

// Guild is one server as seen through the platform API. Every mutating call
// is a single remote request.
type Guild interface {
	ID() string
	// SelfID is the bot's own user ID.
	SelfID() string

	Roles(ctx context.Context) ([]Role, error)
	Channels(ctx context.Context) ([]Channel, error)

	CreateRole(ctx context.Context, spec RoleSpec) (Role, error)
	DeleteRole(ctx context.Context, roleID string) error
	MoveRole(ctx context.Context, roleID string, position int) error
	HasSelfRole(ctx context.Context, roleID string) (bool, error)
	AssignSelfRole(ctx context.Context, roleID string) error

	CreateChannel(ctx context.Context, spec ChannelSpec) (Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error

	Edit(ctx context.Context, s Settings) error
	SendMessage(ctx context.Context, channelID, content string) error
	MemberPermissions(ctx context.Context, userID, channelID string) (perm.Permission, error)
}

// ParseColor converts "#RRGGBB" to its integer value. Empty means no color.
func ParseColor(hex string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if s == "" {
		return 0, nil
	}
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", hex)
	}
	return int(v), nil
}

// FindRole returns the first role with the given name.
func FindRole(roles []Role, name string) (Role, bool) {
	for _, r := range roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// FindChannel returns the first channel with the given name.
func FindChannel(channels []Channel, name string) (Channel, bool) {
	for _, c := range channels {
		if c.Name == name {
			return c, true
		}
	}
	return Channel{}, false
}
