package generator

import (
	"context"
	"strings"
)

// MockLLM is an offline stand-in for local runs; it never calls a model.
// Plan prompts get a small fixed layout, everything else echoes the prompt.
type MockLLM struct{}

const mockPlan = "```json\n" + `{
  "server_config": {"name": "Demo Server", "verification_level": 1, "explicit_content_filter": 1, "afk_timeout": 300},
  "categories": [
    {"name": "📢 Info", "position": 0, "channels": [
      {"name": "📜-rules", "type": "text", "topic": "Read before posting", "position": 0},
      {"name": "📣-announcements", "type": "text", "topic": "News", "position": 1,
       "permissions": {"👥 Member": {"send_messages": false}}}
    ]},
    {"name": "💬 Community", "position": 1, "permissions": {"👥 Member": {"view_channel": true}}, "channels": [
      {"name": "💬-general", "type": "text", "topic": "Talk about anything", "position": 0, "slowmode_delay": 5},
      {"name": "🔊 Lounge", "type": "voice", "position": 1}
    ]}
  ],
  "roles": [
    {"name": "👑 Admin", "color": "#E74C3C", "hoist": true, "mentionable": true, "permissions": {"administrator": true}},
    {"name": "👥 Member", "color": "#3498DB", "hoist": false, "mentionable": true,
     "permissions": {"view_channel": true, "send_messages": true, "read_message_history": true}}
  ]
}` + "\n```"

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch {
	case strings.Contains(prompt.User, "server structure generator"):
		return mockPlan, nil
	case strings.Contains(prompt.User, "array of channels"):
		return `{"channels": [{"name": "🎲-random", "type": "text", "topic": "Off-topic", "category": "💬 Community"}]}`, nil
	case strings.Contains(prompt.User, "array of roles"):
		return `{"roles": [{"name": "🎉 Event Host", "color": "#F1C40F", "hoist": true, "mentionable": true, "permissions": {"manage_events": true}}]}`, nil
	}
	return "Mock response:\n" + prompt.User, nil
}
