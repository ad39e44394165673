package service

import (
	"context"
	"fmt"
	"time"

	"storebot/internal/domain"
	"storebot/internal/flow"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

// StateService отслеживает, на каком шаге диалога находится пользователь.
// Отсутствие записи означает idle.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *StateService) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	if step, ok := flow.Parse(string(state.Step)); !ok {
		s.logger.Warn().Int64("user_id", userID).Str("step", string(state.Step)).Msg("unknown step in stored state, resetting to idle")
		state.Step = step
		state.Target = ""
	}
	return state, nil
}

func (s *StateService) load(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.UserState{UserID: userID}
	}
	return state, nil
}

// SetState moves the user to step and keeps whatever is in scratch.
func (s *StateService) SetState(ctx context.Context, userID int64, step flow.Step) error {
	return s.SetTarget(ctx, userID, step, "")
}

// SetTarget is SetState for steps that act on one product (edit_qty).
func (s *StateService) SetTarget(ctx context.Context, userID int64, step flow.Step, target string) error {
	state, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	state.Step = step
	state.Target = target
	return s.SaveState(ctx, state)
}

// BeginBrowse moves the user to a one-message browse step. An open
// checkout step is remembered in Target and restored by FinishBrowse.
func (s *StateService) BeginBrowse(ctx context.Context, userID int64, step flow.Step) error {
	state, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	target := ""
	if state.Step.Kind() == flow.KindOrder {
		target = string(state.Step)
	} else if resume, ok := state.ResumeStep(); ok {
		target = string(resume)
	}
	state.Step = step
	state.Target = target
	return s.SaveState(ctx, state)
}

// FinishBrowse leaves a browse step and returns where the user landed.
// Staged scratch (a promo code, the delivery details) survives.
func (s *StateService) FinishBrowse(ctx context.Context, userID int64) (flow.Step, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return flow.StepIdle, err
	}
	if state.Step.Kind() != flow.KindBrowse {
		return state.Step, nil
	}
	state.Step = state.AfterBrowse()
	state.Target = ""
	return state.Step, s.SaveState(ctx, state)
}

// SaveState persists a state built by a workflow. An idle state without
// scratch data is the same as no state and is removed.
func (s *StateService) SaveState(ctx context.Context, state *models.UserState) error {
	if state.Step != flow.StepIdle && !state.Step.Valid() {
		return fmt.Errorf("cannot store step %q", state.Step)
	}
	if state.Step == flow.StepIdle && len(state.Scratch) == 0 {
		return s.ClearState(ctx, state.UserID)
	}
	state.UpdatedAt = s.now()
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Int64("user_id", state.UserID).Str("step", string(state.Step)).Msg("failed to save user state")
		return err
	}
	return nil
}

// ClearState drops the step and every staged value.
func (s *StateService) ClearState(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}

func (s *StateService) PutScratch(ctx context.Context, userID int64, key, value string) error {
	state, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	state.Set(key, value)
	return s.SaveState(ctx, state)
}

// GetScratch returns a copy of the staged values, empty when idle.
func (s *StateService) GetScratch(ctx context.Context, userID int64) (map[string]string, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if state != nil {
		for k, v := range state.Scratch {
			out[k] = v
		}
	}
	return out, nil
}

func (s *StateService) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, userID, limit, window)
}
