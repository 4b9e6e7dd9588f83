package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planBody = `{"server_config": {"name": "Hub", "verification_level": 1},
 "categories": [{"name": "General", "position": 0, "channels": [{"name": "chat", "type": "text", "position": 0}]}],
 "roles": [{"name": "Member", "color": "#00FF00", "hoist": false, "mentionable": true, "permissions": {}}]}`

func TestStripFenceVariants(t *testing.T) {
	inputs := []string{
		planBody,
		"```json\n" + planBody + "\n```",
		"```\n" + planBody + "\n```",
		"  ```JSON\n" + planBody + "```  \n",
	}
	want, err := ParsePlan(planBody)
	require.NoError(t, err)

	for _, in := range inputs {
		assert.Equal(t, planBody, StripFence(in))
		got, err := ParsePlan(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStripFenceSingleLine(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("```json {\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFence("```{\"a\":1}```"))
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	inputs := []string{
		`{"server_config": {"name": "x"}, "categories": [], "roles": []`,
		`{"server_config": {"name": "x"}, "categories": [], "roles": [],}`,
		`{"server_config": {"name": "x"}, "categories": [], "roles": []}}`,
		"```json\n{\"categories\": [1, 2,]}\n```",
		"Sure! Here is your server.",
		"```json\n```",
	}
	for _, in := range inputs {
		_, err := ParsePlan(in)
		var derr *DecodeError
		assert.ErrorAs(t, err, &derr, "input %q", in)
		var verr *ValidationError
		assert.NotErrorAs(t, err, &verr, "input %q", in)
	}
}
