package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	reply   string
	err     error
	prompts []Prompt
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.prompts = append(s.prompts, p)
	return s.reply, s.err
}

func TestNewAgentRequiresClient(t *testing.T) {
	_, err := NewAgent(nil)
	require.Error(t, err)
}

func TestGeneratePlanEmbedsDescriptionAndRules(t *testing.T) {
	llm := &scriptedLLM{reply: "```json\n" + planBody + "\n```"}
	agent, err := NewAgent(llm)
	require.NoError(t, err)

	plan, err := agent.GeneratePlan(context.Background(), "gaming community")
	require.NoError(t, err)
	assert.Equal(t, "Hub", plan.ServerConfig.Name)

	require.Len(t, llm.prompts, 1)
	user := llm.prompts[0].User
	assert.Contains(t, user, `"gaming community"`)
	assert.Contains(t, user, "ONLY return a valid JSON object")
	assert.Contains(t, user, "10. Do not add any fields")
	assert.Contains(t, user, `"afk_timeout": "number (60, 300, 900, 1800, 3600)"`)
}

func TestGeneratePlanErrorKinds(t *testing.T) {
	ctx := context.Background()

	agent, _ := NewAgent(&scriptedLLM{err: errors.New("quota exceeded")})
	_, err := agent.GeneratePlan(ctx, "x")
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorContains(t, err, "quota exceeded")

	agent, _ = NewAgent(&scriptedLLM{reply: "   "})
	_, err = agent.GeneratePlan(ctx, "x")
	require.ErrorAs(t, err, &gerr)

	agent, _ = NewAgent(&scriptedLLM{reply: "{not json"})
	_, err = agent.GeneratePlan(ctx, "x")
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)

	agent, _ = NewAgent(&scriptedLLM{reply: `{"server_config": {}, "categories": [], "roles": {}}`})
	_, err = agent.GeneratePlan(ctx, "x")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAskForwardsVerbatim(t *testing.T) {
	llm := &scriptedLLM{reply: " 42 \n"}
	agent, _ := NewAgent(llm)

	answer, err := agent.Ask(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
	assert.Equal(t, "what is the answer?", llm.prompts[0].User)
}

func TestGenerateContentUsesPurpose(t *testing.T) {
	llm := &scriptedLLM{reply: "```markdown\n**Rules**\n1. Be kind\n```"}
	agent, _ := NewAgent(llm)

	content, err := agent.GenerateContent(context.Background(), "📜-rules", "friendly tone")
	require.NoError(t, err)
	assert.Equal(t, "**Rules**\n1. Be kind", content)
	assert.Contains(t, llm.prompts[0].User, "Consequences for breaking rules")
}

func TestMockLLMProducesValidPlan(t *testing.T) {
	agent, _ := NewAgent(MockLLM{})
	plan, err := agent.GeneratePlan(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, plan.Categories, 2)
	assert.Len(t, plan.Roles, 2)

	channels, err := agent.GenerateChannels(context.Background(), "more")
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}
