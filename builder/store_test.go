package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_server_builder/generator"
)

func TestPlanStoreStageReplaces(t *testing.T) {
	s := NewPlanStore()
	first := s.Stage("g1", "alice", generator.Plan{ServerConfig: &generator.ServerConfig{Name: "first"}})
	second := s.Stage("g1", "bob", generator.Plan{ServerConfig: &generator.ServerConfig{Name: "second"}})

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "second", got.Plan.ServerConfig.Name)
	assert.Equal(t, "bob", got.Requester)
}

func TestPlanStoreConsumeRemoves(t *testing.T) {
	s := NewPlanStore()
	s.Stage("g1", "alice", generator.Plan{})
	s.Stage("g2", "alice", generator.Plan{})

	staged, err := s.Consume("g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", staged.GuildID)

	_, ok := s.Get("g1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	_, err = s.Consume("g1")
	assert.ErrorIs(t, err, ErrNoPendingPlan)
}

func TestPlanStoreCancel(t *testing.T) {
	s := NewPlanStore()
	assert.ErrorIs(t, s.Cancel("g1"), ErrNoPendingPlan)

	s.Stage("g1", "alice", generator.Plan{})
	require.NoError(t, s.Cancel("g1"))
	assert.Zero(t, s.Len())
}
