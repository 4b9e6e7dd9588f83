package generator

import (
	"context"
	"errors"
	"strings"
)

// Agent turns descriptions into plans, amendment documents and channel content.
// It never retries; callers decide whether to ask again.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

func (a *Agent) complete(ctx context.Context, prompt Prompt) (string, error) {
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &GenerationError{Err: errors.New("model returned an empty response")}
	}
	return raw, nil
}

// GeneratePlan produces a validated Plan for a server description.
// Failures are *GenerationError, *DecodeError or *ValidationError.
func (a *Agent) GeneratePlan(ctx context.Context, description string) (Plan, error) {
	raw, err := a.complete(ctx, BuildPlanPrompt(description))
	if err != nil {
		return Plan{}, err
	}
	return ParsePlan(raw)
}

// GenerateChannels produces channel drafts for the "add channels" amendment.
func (a *Agent) GenerateChannels(ctx context.Context, description string) ([]ChannelDraft, error) {
	raw, err := a.complete(ctx, BuildChannelsPrompt(description))
	if err != nil {
		return nil, err
	}
	return ParseChannels(raw)
}

// GenerateRoles produces role drafts for the "add roles" amendment.
func (a *Agent) GenerateRoles(ctx context.Context, description string) ([]RoleDraft, error) {
	raw, err := a.complete(ctx, BuildRolesPrompt(description))
	if err != nil {
		return nil, err
	}
	return ParseRoles(raw)
}

// GenerateContent produces Discord-formatted prose for a channel.
func (a *Agent) GenerateContent(ctx context.Context, channelName, description string) (string, error) {
	raw, err := a.complete(ctx, BuildContentPrompt(channelName, description))
	if err != nil {
		return "", err
	}
	return StripFence(raw), nil
}

// Ask forwards a question verbatim.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	raw, err := a.complete(ctx, Prompt{User: question})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
