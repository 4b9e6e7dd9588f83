package platform

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"ai_server_builder/perm"
)

// MemoryGuild is an in-process Guild. It backs simulated runs and tests:
// every mutating call is recorded, and Fail can inject per-call errors.
type MemoryGuild struct {
	mu       sync.Mutex
	id       string
	selfID   string
	nextID   int
	roles    []Role
	channels []Channel
	specs    map[string]ChannelSpec
	settings Settings
	selfRole map[string]bool
	admins   map[string]bool
	messages []SentMessage
	calls    []string

	// Fail, when set, is consulted before every mutating call with the
	// operation name and the target name; a non-nil result fails the call.
	Fail func(op, name string) error
	// OnSend, when set, observes every message sent.
	OnSend func(channelID, content string)
}

type SentMessage struct {
	ChannelID string
	Content   string
}

func NewMemoryGuild(id, selfID string) *MemoryGuild {
	return &MemoryGuild{
		id:       id,
		selfID:   selfID,
		roles:    []Role{{ID: id, Name: "@everyone", Everyone: true}},
		specs:    make(map[string]ChannelSpec),
		selfRole: make(map[string]bool),
		admins:   make(map[string]bool),
	}
}

func (m *MemoryGuild) newID() string {
	m.nextID++
	return m.id + "-" + strconv.Itoa(m.nextID)
}

func (m *MemoryGuild) check(op, name string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, name)
}

func (m *MemoryGuild) record(op, name string) {
	m.calls = append(m.calls, op+":"+name)
}

// SeedRole adds a pre-existing role without recording a call.
func (m *MemoryGuild) SeedRole(name string, managed bool) Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := Role{ID: m.newID(), Name: name, Position: len(m.roles), Managed: managed}
	m.roles = append(m.roles, r)
	return r
}

// SeedChannel adds a pre-existing channel without recording a call.
func (m *MemoryGuild) SeedChannel(name string, kind ChannelKind, parentID string) Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Channel{ID: m.newID(), Name: name, Kind: kind, ParentID: parentID, Position: len(m.channels)}
	m.channels = append(m.channels, c)
	return c
}

// GrantAdmin marks userID as holding Administrator.
func (m *MemoryGuild) GrantAdmin(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[userID] = true
}

// Calls returns the mutating calls in order, as "op:name".
func (m *MemoryGuild) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Messages returns the contents sent to channelID.
func (m *MemoryGuild) Messages(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.messages {
		if msg.ChannelID == channelID {
			out = append(out, msg.Content)
		}
	}
	return out
}

// Settings returns the last applied guild settings.
func (m *MemoryGuild) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// ChannelSpec returns the spec a channel was created with.
func (m *MemoryGuild) ChannelSpec(channelID string) (ChannelSpec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.specs[channelID]
	return s, ok
}

func (m *MemoryGuild) ID() string     { return m.id }
func (m *MemoryGuild) SelfID() string { return m.selfID }

func (m *MemoryGuild) Roles(context.Context) ([]Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]Role(nil), m.roles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *MemoryGuild) Channels(context.Context) ([]Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Channel(nil), m.channels...), nil
}

func (m *MemoryGuild) CreateRole(_ context.Context, spec RoleSpec) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("create_role", spec.Name); err != nil {
		return Role{}, err
	}
	// new roles land just above @everyone
	for i := range m.roles {
		if !m.roles[i].Everyone {
			m.roles[i].Position++
		}
	}
	r := Role{ID: m.newID(), Name: spec.Name, Position: 1}
	m.roles = append(m.roles, r)
	m.record("create_role", spec.Name)
	return r, nil
}

func (m *MemoryGuild) DeleteRole(_ context.Context, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.roles {
		if r.ID != roleID {
			continue
		}
		if err := m.check("delete_role", r.Name); err != nil {
			return err
		}
		if r.Everyone || r.Managed {
			return fmt.Errorf("403 Forbidden: cannot delete role %s", r.Name)
		}
		m.roles = append(m.roles[:i], m.roles[i+1:]...)
		delete(m.selfRole, roleID)
		m.record("delete_role", r.Name)
		return nil
	}
	return fmt.Errorf("404 Not Found: unknown role %s", roleID)
}

func (m *MemoryGuild) MoveRole(_ context.Context, roleID string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.roles {
		if r.ID != roleID {
			continue
		}
		if err := m.check("move_role", r.Name); err != nil {
			return err
		}
		m.roles[i].Position = position
		m.record("move_role", r.Name)
		return nil
	}
	return fmt.Errorf("404 Not Found: unknown role %s", roleID)
}

func (m *MemoryGuild) HasSelfRole(_ context.Context, roleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selfRole[roleID], nil
}

func (m *MemoryGuild) AssignSelfRole(_ context.Context, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.ID != roleID {
			continue
		}
		if err := m.check("assign_role", r.Name); err != nil {
			return err
		}
		m.selfRole[roleID] = true
		m.record("assign_role", r.Name)
		return nil
	}
	return fmt.Errorf("404 Not Found: unknown role %s", roleID)
}

func (m *MemoryGuild) CreateChannel(_ context.Context, spec ChannelSpec) (Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op := "create_" + spec.Kind.String()
	if err := m.check(op, spec.Name); err != nil {
		return Channel{}, err
	}
	c := Channel{ID: m.newID(), Name: spec.Name, Kind: spec.Kind, ParentID: spec.ParentID, Position: spec.Position}
	m.channels = append(m.channels, c)
	m.specs[c.ID] = spec
	m.record(op, spec.Name)
	return c, nil
}

func (m *MemoryGuild) DeleteChannel(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.channels {
		if c.ID != channelID {
			continue
		}
		if err := m.check("delete_channel", c.Name); err != nil {
			return err
		}
		m.channels = append(m.channels[:i], m.channels[i+1:]...)
		m.record("delete_channel", c.Name)
		return nil
	}
	return fmt.Errorf("404 Not Found: unknown channel %s", channelID)
}

func (m *MemoryGuild) Edit(_ context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("edit_guild", s.Name); err != nil {
		return err
	}
	m.settings = s
	m.record("edit_guild", s.Name)
	return nil
}

func (m *MemoryGuild) SendMessage(_ context.Context, channelID, content string) error {
	m.mu.Lock()
	m.messages = append(m.messages, SentMessage{ChannelID: channelID, Content: content})
	hook := m.OnSend
	m.mu.Unlock()
	if hook != nil {
		hook(channelID, content)
	}
	return nil
}

func (m *MemoryGuild) MemberPermissions(_ context.Context, userID, _ string) (perm.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.admins[userID] {
		return perm.Administrator, nil
	}
	return perm.ViewChannel | perm.SendMessages, nil
}
