package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ai_server_builder/generator"
)

// StagedPlan is a validated plan waiting for confirmation.
type StagedPlan struct {
	ID        uuid.UUID      `json:"id"`
	GuildID   string         `json:"guild_id"`
	Requester string         `json:"requester"`
	StagedAt  time.Time      `json:"staged_at"`
	Plan      generator.Plan `json:"plan"`
}

// PlanStore holds at most one pending plan per guild.
type PlanStore struct {
	mu    sync.Mutex
	plans map[string]StagedPlan
	now   func() time.Time
}

func NewPlanStore() *PlanStore {
	return &PlanStore{plans: make(map[string]StagedPlan), now: time.Now}
}

// Stage replaces any plan already pending for the guild.
func (s *PlanStore) Stage(guildID, requester string, plan generator.Plan) StagedPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := StagedPlan{
		ID:        uuid.New(),
		GuildID:   guildID,
		Requester: requester,
		StagedAt:  s.now(),
		Plan:      plan,
	}
	s.plans[guildID] = staged
	pendingPlans.Set(float64(len(s.plans)))
	return staged
}

// Consume returns the pending plan and removes it.
func (s *PlanStore) Consume(guildID string) (StagedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged, ok := s.plans[guildID]
	if !ok {
		return StagedPlan{}, ErrNoPendingPlan
	}
	delete(s.plans, guildID)
	pendingPlans.Set(float64(len(s.plans)))
	return staged, nil
}

func (s *PlanStore) Cancel(guildID string) error {
	_, err := s.Consume(guildID)
	return err
}

func (s *PlanStore) Get(guildID string) (StagedPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged, ok := s.plans[guildID]
	return staged, ok
}

func (s *PlanStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plans)
}
