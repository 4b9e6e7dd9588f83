package builder

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/platform"
)

const (
	testGuild     = "g1"
	testBot       = "bot"
	testRequester = "alice"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// scriptedAsker answers prompts in order and times out once it runs dry.
type scriptedAsker struct {
	mu      sync.Mutex
	answers []string
	prompts []dialog.Prompt
}

func answers(a ...string) *scriptedAsker {
	return &scriptedAsker{answers: a}
}

func (s *scriptedAsker) Ask(_ context.Context, p dialog.Prompt) dialog.Reply {
	if p.Announce != nil {
		p.Announce()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	if len(s.answers) == 0 {
		return dialog.Reply{Outcome: dialog.TimedOut}
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return dialog.Reply{Outcome: dialog.Answered, Content: a}
}

func (s *scriptedAsker) asked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type fakeGen struct {
	channels []generator.ChannelDraft
	roles    []generator.RoleDraft
	content  string
	err      error
}

func (f *fakeGen) GenerateChannels(context.Context, string) ([]generator.ChannelDraft, error) {
	return f.channels, f.err
}

func (f *fakeGen) GenerateRoles(context.Context, string) ([]generator.RoleDraft, error) {
	return f.roles, f.err
}

func (f *fakeGen) GenerateContent(context.Context, string, string) (string, error) {
	return f.content, f.err
}

func newTestBuilder(gen Generator) *Builder {
	if gen == nil {
		gen = &fakeGen{}
	}
	return New(gen, Options{}, discardLogger)
}

// scaffolded returns a guild whose bot role and channel already exist, and
// the conversation in the bot channel.
func scaffolded(b *Builder, g *platform.MemoryGuild, asker dialog.Asker) *Conversation {
	ctx := context.Background()
	setup := b.Conversation(g, "setup", testRequester, asker)
	if _, err := b.Scaffold.EnsureRole(ctx, setup); err != nil {
		panic(err)
	}
	ch, err := b.Scaffold.EnsureChannel(ctx, setup)
	if err != nil {
		panic(err)
	}
	return b.Conversation(g, ch.ID, testRequester, asker)
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

const gamingPlan = `{
  "server_config": {"name": "Gaming Hub", "verification_level": 1, "explicit_content_filter": 1, "afk_timeout": 300},
  "categories": [
    {"name": "📢 Info", "position": 0,
     "permissions": {"Member": {"send_messages": false}, "Ghost": {"view_channel": false}},
     "channels": [
       {"name": "📜-rules", "type": "text", "position": 0},
       {"name": "📣-announcements", "type": "text", "position": 1}
     ]},
    {"name": "🎮 Gaming", "position": 1,
     "channels": [
       {"name": "💬-general", "type": "text", "position": 0, "slowmode_delay": 5},
       {"name": "🔊-lobby", "type": "voice", "position": 1}
     ]}
  ],
  "roles": [
    {"name": "Admin", "color": "#FF0000", "hoist": true, "mentionable": true, "permissions": {"administrator": true}},
    {"name": "Moderator", "color": "#00AAFF", "hoist": true, "mentionable": true, "permissions": {"manage_messages": true, "kick_members": true}},
    {"name": "Member", "color": "#00FF00", "hoist": false, "mentionable": true, "permissions": {"send_messages": true}},
    {"name": "Guest", "color": "#99AAB5", "hoist": false, "mentionable": false, "permissions": {"view_channel": true}}
  ]
}`

func mustPlan(raw string) generator.Plan {
	plan, err := generator.ParsePlan(raw)
	if err != nil {
		panic(err)
	}
	return plan
}
