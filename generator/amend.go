package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"ai_server_builder/perm"
)

// Amendment documents skip full plan validation; entries are read leniently
// and missing fields get defaults.

// ParseChannels reads a {"channels": [...]} document (a bare array is accepted too).
func ParseChannels(raw string) ([]ChannelDraft, error) {
	items, err := amendmentItems(raw, "channels")
	if err != nil {
		return nil, err
	}
	var out []ChannelDraft
	for _, item := range items {
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(item.Get("type").String()))
		if kind == "" {
			kind = ChannelText
		}
		category := strings.TrimSpace(item.Get("category").String())
		if category == "" {
			category = defaultCategory
		}
		out = append(out, ChannelDraft{
			Name:     name,
			Type:     kind,
			Topic:    item.Get("topic").String(),
			Category: category,
		})
	}
	if len(out) == 0 {
		return nil, &ValidationError{Reason: "no channels in response"}
	}
	return out, nil
}

// ParseRoles reads a {"roles": [...]} document (a bare array is accepted too).
func ParseRoles(raw string) ([]RoleDraft, error) {
	items, err := amendmentItems(raw, "roles")
	if err != nil {
		return nil, err
	}
	var out []RoleDraft
	for _, item := range items {
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			continue
		}
		flags := map[string]bool{}
		item.Get("permissions").ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.True || value.Type == gjson.False {
				flags[key.String()] = value.Bool()
			}
			return true
		})
		out = append(out, RoleDraft{
			Name:        name,
			Color:       item.Get("color").String(),
			Hoist:       item.Get("hoist").Bool(),
			Mentionable: item.Get("mentionable").Bool(),
			Permissions: perm.FromMap(flags),
		})
	}
	if len(out) == 0 {
		return nil, &ValidationError{Reason: "no roles in response"}
	}
	return out, nil
}

func amendmentItems(raw, key string) ([]gjson.Result, error) {
	cleaned := StripFence(raw)
	if !gjson.Valid(cleaned) {
		return nil, &DecodeError{Err: errors.New("response is not valid JSON")}
	}
	root := gjson.Parse(cleaned)
	if root.IsArray() {
		return root.Array(), nil
	}
	list := root.Get(key)
	if !list.IsArray() {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s must be a list", key)}
	}
	return list.Array(), nil
}

const defaultCategory = "General"

// DefaultChannels is used when channel generation fails.
func DefaultChannels() []ChannelDraft {
	return []ChannelDraft{{Name: "new-channel", Type: ChannelText, Topic: "New channel", Category: defaultCategory}}
}

// DefaultRoles is used when role generation fails.
func DefaultRoles() []RoleDraft {
	return []RoleDraft{{Name: "new-role", Color: "#99AAB5", Hoist: true, Mentionable: true}}
}

// DefaultContent is used when content generation fails.
func DefaultContent(channelName, description string) string {
	switch InferPurpose(channelName) {
	case PurposeRules:
		return "**Server Rules**\n\n1. Be respectful\n2. No spam\n3. Follow Discord TOS"
	case PurposeWelcome:
		return "**Welcome to our server!**\n\nWe're glad you're here. Have a look around and say hi!"
	}
	return description
}
