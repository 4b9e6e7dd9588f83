package perm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapSplitsAllowAndDeny(t *testing.T) {
	s := FromMap(map[string]bool{
		"view_channel":  true,
		"send_messages": false,
		"fly":           true,
	})

	assert.True(t, s.Allow.Has(ViewChannel))
	assert.True(t, s.Deny.Has(SendMessages))
	assert.False(t, s.Allow.Has(SendMessages))
	assert.Equal(t, []string{"fly"}, s.Unknown)
}

func TestLookupAliases(t *testing.T) {
	a, ok := Lookup("read_messages")
	require.True(t, ok)
	b, _ := Lookup("VIEW_CHANNEL")
	assert.Equal(t, a, b)

	_, ok = Lookup("summon_dragons")
	assert.False(t, ok)
}

func TestUnmarshalRejectsStringBooleans(t *testing.T) {
	var s Set
	err := json.Unmarshal([]byte(`{"administrator":"true"}`), &s)
	require.Error(t, err)
}

func TestUnmarshalNull(t *testing.T) {
	var s Set
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.True(t, s.IsZero())
}

func TestMergeOverrides(t *testing.T) {
	category := FromMap(map[string]bool{"view_channel": false, "send_messages": true})
	channel := FromMap(map[string]bool{"view_channel": true})

	got := category.Merge(channel)
	assert.True(t, got.Allow.Has(ViewChannel|SendMessages))
	assert.False(t, got.Deny.Has(ViewChannel))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := FromMap(map[string]bool{"administrator": true, "speak": false})
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Set
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Allow, out.Allow)
	assert.Equal(t, in.Deny, out.Deny)
}
