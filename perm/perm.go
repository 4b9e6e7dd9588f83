// Package perm models Discord permission bits as a typed set.
package perm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Permission is a single Discord permission bit, or a union of them.
type Permission int64

// Bit values follow the Discord API documentation.
const (
	CreateInstantInvite   Permission = 1 << 0
	KickMembers           Permission = 1 << 1
	BanMembers            Permission = 1 << 2
	Administrator         Permission = 1 << 3
	ManageChannels        Permission = 1 << 4
	ManageGuild           Permission = 1 << 5
	AddReactions          Permission = 1 << 6
	ViewAuditLog          Permission = 1 << 7
	PrioritySpeaker       Permission = 1 << 8
	Stream                Permission = 1 << 9
	ViewChannel           Permission = 1 << 10
	SendMessages          Permission = 1 << 11
	SendTTSMessages       Permission = 1 << 12
	ManageMessages        Permission = 1 << 13
	EmbedLinks            Permission = 1 << 14
	AttachFiles           Permission = 1 << 15
	ReadMessageHistory    Permission = 1 << 16
	MentionEveryone       Permission = 1 << 17
	UseExternalEmojis     Permission = 1 << 18
	Connect               Permission = 1 << 20
	Speak                 Permission = 1 << 21
	MuteMembers           Permission = 1 << 22
	DeafenMembers         Permission = 1 << 23
	MoveMembers           Permission = 1 << 24
	UseVAD                Permission = 1 << 25
	ChangeNickname        Permission = 1 << 26
	ManageNicknames       Permission = 1 << 27
	ManageRoles           Permission = 1 << 28
	ManageWebhooks        Permission = 1 << 29
	ManageEmojis          Permission = 1 << 30
	UseAppCommands        Permission = 1 << 31
	ManageEvents          Permission = 1 << 33
	ManageThreads         Permission = 1 << 34
	CreatePublicThreads   Permission = 1 << 35
	CreatePrivateThreads  Permission = 1 << 36
	SendMessagesInThreads Permission = 1 << 38
	ModerateMembers       Permission = 1 << 40
)

// names lists every permission name a plan may use. Aliases map to the same bit.
var names = map[string]Permission{
	"create_instant_invite":    CreateInstantInvite,
	"kick_members":             KickMembers,
	"ban_members":              BanMembers,
	"administrator":            Administrator,
	"manage_channels":          ManageChannels,
	"manage_guild":             ManageGuild,
	"manage_server":            ManageGuild,
	"add_reactions":            AddReactions,
	"view_audit_log":           ViewAuditLog,
	"priority_speaker":         PrioritySpeaker,
	"stream":                   Stream,
	"view_channel":             ViewChannel,
	"read_messages":            ViewChannel,
	"send_messages":            SendMessages,
	"send_tts_messages":        SendTTSMessages,
	"manage_messages":          ManageMessages,
	"embed_links":              EmbedLinks,
	"attach_files":             AttachFiles,
	"read_message_history":     ReadMessageHistory,
	"mention_everyone":         MentionEveryone,
	"use_external_emojis":      UseExternalEmojis,
	"connect":                  Connect,
	"speak":                    Speak,
	"mute_members":             MuteMembers,
	"deafen_members":           DeafenMembers,
	"move_members":             MoveMembers,
	"use_voice_activation":     UseVAD,
	"change_nickname":          ChangeNickname,
	"manage_nicknames":         ManageNicknames,
	"manage_roles":             ManageRoles,
	"manage_permissions":       ManageRoles,
	"manage_webhooks":          ManageWebhooks,
	"manage_emojis":            ManageEmojis,
	"use_application_commands": UseAppCommands,
	"manage_events":            ManageEvents,
	"manage_threads":           ManageThreads,
	"create_public_threads":    CreatePublicThreads,
	"create_private_threads":   CreatePrivateThreads,
	"send_messages_in_threads": SendMessagesInThreads,
	"moderate_members":         ModerateMembers,
}

// Lookup returns the bit for a permission name.
func Lookup(name string) (Permission, bool) {
	p, ok := names[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Has reports whether every bit of q is set in p.
func (p Permission) Has(q Permission) bool {
	return p&q == q
}

// Set is a decoded name→bool permission mapping. True entries land in Allow,
// false entries in Deny. Names that are not recognized are kept in Unknown
// and otherwise ignored.
type Set struct {
	Allow   Permission
	Deny    Permission
	Unknown []string
}

// FromMap builds a Set from a name→bool mapping.
func FromMap(m map[string]bool) Set {
	var s Set
	for name, on := range m {
		bit, ok := Lookup(name)
		if !ok {
			s.Unknown = append(s.Unknown, name)
			continue
		}
		if on {
			s.Allow |= bit
			s.Deny &^= bit
		} else {
			s.Deny |= bit
			s.Allow &^= bit
		}
	}
	sort.Strings(s.Unknown)
	return s
}

// Of returns a Set allowing the given bits.
func Of(bits ...Permission) Set {
	var s Set
	for _, b := range bits {
		s.Allow |= b
	}
	return s
}

// Merge applies o on top of s: bits named by o override those of s.
func (s Set) Merge(o Set) Set {
	out := Set{
		Allow: (s.Allow &^ o.Deny) | o.Allow,
		Deny:  (s.Deny &^ o.Allow) | o.Deny,
	}
	out.Unknown = append(append([]string(nil), s.Unknown...), o.Unknown...)
	return out
}

// IsZero reports whether the set neither allows nor denies anything.
func (s Set) IsZero() bool {
	return s.Allow == 0 && s.Deny == 0
}

func (s *Set) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Set{}
		return nil
	}
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("permissions must map names to true/false: %w", err)
	}
	*s = FromMap(m)
	return nil
}

func (s Set) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool)
	for name, bit := range canonical() {
		switch {
		case s.Allow.Has(bit):
			m[name] = true
		case s.Deny.Has(bit):
			m[name] = false
		}
	}
	return json.Marshal(m)
}

// canonical drops aliases so a bit is marshalled under one name.
func canonical() map[string]Permission {
	aliases := map[string]bool{"read_messages": true, "manage_server": true, "manage_permissions": true}
	out := make(map[string]Permission, len(names))
	for name, bit := range names {
		if aliases[name] {
			continue
		}
		out[name] = bit
	}
	return out
}
