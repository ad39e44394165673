package models

import (
	"fmt"

	"storebot/internal/flow"
)

// Input is one message from the user, already classified by the transport.
type Input struct {
	Event     flow.Event
	Text      string
	Phone     string
	Latitude  float64
	Longitude float64
}

// LocationString renders shared coordinates the way they are stored in scratch.
func (in Input) LocationString() string {
	return fmt.Sprintf("%.6f,%.6f", in.Latitude, in.Longitude)
}

// Outcome tells the transport what happened after an input was consumed.
// Step is the session step after the transition; StepIdle means the
// workflow finished and Order (or Product for admin flows) carries the result.
type Outcome struct {
	Step    flow.Step
	Order   *Order
	Product *Product
	Deleted string
	Missing []string
}

// Finished reports whether the workflow left its last step.
func (o *Outcome) Finished() bool {
	return o != nil && o.Step == flow.StepIdle
}

// ProductCount is one row of the popularity ranking.
type ProductCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
