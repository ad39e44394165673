package models

import (
	"strconv"
	"time"

	"storebot/internal/flow"
)

// Scratch keys collected while a workflow is active.
const (
	ScratchName          = "name"
	ScratchPhone         = "phone"
	ScratchLocation      = "location"
	ScratchAddress       = "address"
	ScratchExternalID    = "external_id"
	ScratchPromoCode     = "promo_code"
	ScratchPromoDiscount = "promo_discount"

	ScratchAdminName        = "admin_name"
	ScratchAdminPrice       = "admin_price"
	ScratchAdminDescription = "admin_description"
	ScratchAdminImage       = "admin_image"
)

// UserState is the conversational session of one user.
type UserState struct {
	UserID    int64             `json:"user_id"`
	Step      flow.Step         `json:"step"`
	Target    string            `json:"target,omitempty"`
	Scratch   map[string]string `json:"scratch,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *UserState) GetString(key string) string {
	if s == nil || s.Scratch == nil {
		return ""
	}
	return s.Scratch[key]
}

func (s *UserState) GetInt(key string) int {
	v, err := strconv.Atoi(s.GetString(key))
	if err != nil {
		return 0
	}
	return v
}

func (s *UserState) Has(key string) bool {
	return s.GetString(key) != ""
}

func (s *UserState) Set(key, value string) {
	if s.Scratch == nil {
		s.Scratch = make(map[string]string)
	}
	s.Scratch[key] = value
}

// ResumeStep is the checkout step a browse step interrupted, if any.
func (s *UserState) ResumeStep() (flow.Step, bool) {
	if s == nil || s.Step.Kind() != flow.KindBrowse {
		return flow.StepIdle, false
	}
	step, ok := flow.Parse(s.Target)
	if !ok || step.Kind() != flow.KindOrder {
		return flow.StepIdle, false
	}
	return step, true
}

// AfterBrowse is the step a finished browse step hands over to.
func (s *UserState) AfterBrowse() flow.Step {
	if step, ok := s.ResumeStep(); ok {
		return step
	}
	if next, ok := flow.Next(s.Step, flow.EventText); ok {
		return next
	}
	return flow.StepIdle
}

// Expired reports whether the session was idle for longer than ttl.
func (s *UserState) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
