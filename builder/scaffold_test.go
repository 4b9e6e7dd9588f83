package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_server_builder/perm"
	"ai_server_builder/platform"
)

func TestEnsureRoleIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	conv := b.Conversation(g, "c1", testRequester, answers())

	first, err := b.Scaffold.EnsureRole(ctx, conv)
	require.NoError(t, err)
	calls := len(g.Calls())

	second, err := b.Scaffold.EnsureRole(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, g.Calls(), calls)
	assert.Equal(t, []string{"create_role:" + DefaultRoleName, "assign_role:" + DefaultRoleName}, g.Calls())
}

func TestEnsureChannelIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	conv := b.Conversation(g, "c1", testRequester, answers())

	first, err := b.Scaffold.EnsureChannel(ctx, conv)
	require.NoError(t, err)
	second, err := b.Scaffold.EnsureChannel(ctx, conv)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"create_text:" + DefaultChannelName}, g.Calls())

	spec, ok := g.ChannelSpec(first.ID)
	require.True(t, ok)
	assert.Contains(t, spec.Overwrites, platform.Overwrite{TargetID: testGuild, Allow: perm.ViewChannel | perm.SendMessages})
	assert.Contains(t, spec.Overwrites, platform.Overwrite{
		TargetID: testBot, Member: true, Allow: perm.ViewChannel | perm.SendMessages | perm.ManageMessages,
	})
}

func TestEnsureRoleCreateFailureAborts(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	g.Fail = func(op, _ string) error {
		if op == "create_role" {
			return errors.New("403 Forbidden")
		}
		return nil
	}
	conv := b.Conversation(g, "c1", testRequester, answers())

	_, err := b.Scaffold.EnsureRole(ctx, conv)
	assert.ErrorIs(t, err, ErrScaffoldRole)
	assert.True(t, hasMessage(g.Messages("c1"), "❌ Failed to create bot role"))
}

func TestEnsureRoleAssignFailureAborts(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	g.Fail = func(op, _ string) error {
		if op == "assign_role" {
			return errors.New("403 Forbidden")
		}
		return nil
	}
	conv := b.Conversation(g, "c1", testRequester, answers())

	_, err := b.Scaffold.EnsureRole(ctx, conv)
	assert.ErrorIs(t, err, ErrScaffoldRole)
}

func TestEnsureRoleRepositionFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	g.SeedRole("a", false)
	g.SeedRole("b", false)
	g.Fail = func(op, _ string) error {
		if op == "move_role" {
			return errors.New("403 Forbidden")
		}
		return nil
	}
	conv := b.Conversation(g, "c1", testRequester, answers())

	role, err := b.Scaffold.EnsureRole(ctx, conv)
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.True(t, hasMessage(g.Messages("c1"), "⚠️ Failed to position bot role"))
}

func TestEnsureRoleMovesBelowHighest(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	g.SeedRole("a", false)
	g.SeedRole("b", false)
	conv := b.Conversation(g, "c1", testRequester, answers())

	role, err := b.Scaffold.EnsureRole(ctx, conv)
	require.NoError(t, err)

	roles, _ := g.Roles(ctx)
	got, _ := platform.FindRole(roles, role.Name)
	highest, _ := platform.FindRole(roles, "b")
	assert.Equal(t, highest.Position-1, got.Position)
}

func TestTeardownWhenAbsent(t *testing.T) {
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	conv := b.Conversation(g, "c1", testRequester, answers())

	assert.NotPanics(t, func() { b.Scaffold.Teardown(context.Background(), conv) })
	assert.Empty(t, g.Calls())
	assert.Empty(t, g.Messages("c1"))
}

func TestTeardownPartial(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	conv := b.Conversation(g, "c1", testRequester, answers())
	_, err := b.Scaffold.EnsureRole(ctx, conv)
	require.NoError(t, err)
	base := len(g.Calls())

	b.Scaffold.Teardown(ctx, conv)
	assert.Equal(t, []string{"delete_role:" + DefaultRoleName}, g.Calls()[base:])
}

func TestTeardownContinuesAfterChannelFailure(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(nil)
	g := platform.NewMemoryGuild(testGuild, testBot)
	conv := scaffolded(b, g, answers())
	g.Fail = func(op, _ string) error {
		if op == "delete_channel" {
			return errors.New("403 Forbidden")
		}
		return nil
	}
	base := len(g.Calls())

	b.Scaffold.Teardown(ctx, conv)
	assert.Equal(t, []string{"delete_role:" + DefaultRoleName}, g.Calls()[base:])
	assert.True(t, hasMessage(g.Messages(conv.ChannelID), "⚠️ Could not delete bot channel"))
}
