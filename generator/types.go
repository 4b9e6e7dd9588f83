package generator

import "ai_server_builder/perm"

// Plan is the validated server layout produced from a free-text description.
type Plan struct {
	ServerConfig *ServerConfig `json:"server_config"`
	Categories   []Category    `json:"categories" validate:"max=8,dive"`
	Roles        []Role        `json:"roles" validate:"max=10,dive"`
}

// ServerConfig holds guild-level settings applied after the structure exists.
type ServerConfig struct {
	Name                  string `json:"name"`
	VerificationLevel     int    `json:"verification_level" validate:"min=0,max=4"`
	ExplicitContentFilter int    `json:"explicit_content_filter" validate:"min=0,max=2"`
	AFKTimeout            int    `json:"afk_timeout" validate:"omitempty,oneof=60 300 900 1800 3600"`
}

type Role struct {
	Name        string   `json:"name" validate:"required"`
	Color       string   `json:"color" validate:"omitempty,len=7,hexcolor"`
	Hoist       bool     `json:"hoist"`
	Mentionable bool     `json:"mentionable"`
	Permissions perm.Set `json:"permissions"`
}

type Category struct {
	Name        string              `json:"name" validate:"required"`
	Position    int                 `json:"position" validate:"min=0"`
	Permissions map[string]perm.Set `json:"permissions,omitempty"`
	Channels    []Channel           `json:"channels" validate:"max=6,dive"`
}

// Channel types understood by the provisioner. Anything else is skipped.
const (
	ChannelText  = "text"
	ChannelVoice = "voice"
	ChannelForum = "forum"
)

type Channel struct {
	Name          string              `json:"name" validate:"required"`
	Type          string              `json:"type"`
	Topic         string              `json:"topic,omitempty"`
	Position      int                 `json:"position" validate:"min=0"`
	SlowmodeDelay int                 `json:"slowmode_delay" validate:"min=0,max=21600"`
	NSFW          bool                `json:"nsfw"`
	Permissions   map[string]perm.Set `json:"permissions,omitempty"`
}

// ChannelCount returns the number of channels across all categories.
func (p Plan) ChannelCount() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.Channels)
	}
	return n
}

// ChannelDraft is one entry of a lightweight "add channels" document.
type ChannelDraft struct {
	Name     string
	Type     string
	Topic    string
	Category string
}

// RoleDraft is one entry of a lightweight "add roles" document.
type RoleDraft struct {
	Name        string
	Color       string
	Hoist       bool
	Mentionable bool
	Permissions perm.Set
}
