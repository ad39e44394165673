// Package flow describes the conversational workflows of the store bot as typed
// steps and transition tables. Persisted session records carry a Step; everything
// that moves a user from one step to the next goes through Next.
package flow

// Step is a single position in one of the conversational workflows.
type Step string

// Kind groups steps by the workflow that owns them.
type Kind int

const (
	KindNone Kind = iota
	KindOrder
	KindAdmin
	KindBrowse
)

func (k Kind) String() string {
	switch k {
	case KindOrder:
		return "order"
	case KindAdmin:
		return "admin"
	case KindBrowse:
		return "browse"
	default:
		return "none"
	}
}

const (
	// StepIdle is the absence of an active step. Scratch may still hold staged data
	// (a promo discount, for example).
	StepIdle Step = ""
	// StepDone is a terminal marker: the workflow finished or was abandoned and the
	// session record must be cleared. It is never stored.
	StepDone Step = "done"

	StepOrderName      Step = "order_name"
	StepOrderPhone     Step = "order_phone"
	StepOrderLocation  Step = "order_location"
	StepAwaitingSubmit Step = "awaiting_submit_action"
	StepConfirmation   Step = "confirmation_prompt"

	StepSearch    Step = "search"
	StepPromoCode Step = "promo_code"
	StepEditQty   Step = "edit_qty"

	StepAdminAddName        Step = "admin_add_name"
	StepAdminAddPrice       Step = "admin_add_price"
	StepAdminAddDescription Step = "admin_add_description"
	StepAdminAddImage       Step = "admin_add_image"
	StepAdminAddCategory    Step = "admin_add_category"
	StepAdminDeleteName     Step = "admin_delete_name"
)

// Event is an input class that can move a session between steps.
type Event int

const (
	EventStart Event = iota + 1
	EventText
	EventLocation
	EventContact
	EventSubmit
	EventConfirmYes
	EventConfirmNo
	EventBack
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventText:
		return "text"
	case EventLocation:
		return "location"
	case EventContact:
		return "contact"
	case EventSubmit:
		return "submit"
	case EventConfirmYes:
		return "confirm_yes"
	case EventConfirmNo:
		return "confirm_no"
	case EventBack:
		return "back"
	default:
		return "unknown"
	}
}

var stepKinds = map[Step]Kind{
	StepOrderName:      KindOrder,
	StepOrderPhone:     KindOrder,
	StepOrderLocation:  KindOrder,
	StepAwaitingSubmit: KindOrder,
	StepConfirmation:   KindOrder,

	StepSearch:    KindBrowse,
	StepPromoCode: KindBrowse,
	StepEditQty:   KindBrowse,

	StepAdminAddName:        KindAdmin,
	StepAdminAddPrice:       KindAdmin,
	StepAdminAddDescription: KindAdmin,
	StepAdminAddImage:       KindAdmin,
	StepAdminAddCategory:    KindAdmin,
	StepAdminDeleteName:     KindAdmin,
}

// Kind returns the workflow a step belongs to.
func (s Step) Kind() Kind {
	return stepKinds[s]
}

// Valid reports whether s may be stored in a session record.
func (s Step) Valid() bool {
	_, ok := stepKinds[s]
	return ok
}

// Parse converts a stored tag back into a Step. Unknown tags (left over from an
// older deployment, for instance) are reported as idle.
func Parse(raw string) (Step, bool) {
	s := Step(raw)
	if s == StepIdle {
		return StepIdle, true
	}
	if !s.Valid() {
		return StepIdle, false
	}
	return s, true
}

// Steps lists every storable step.
func Steps() []Step {
	return []Step{
		StepOrderName, StepOrderPhone, StepOrderLocation, StepAwaitingSubmit, StepConfirmation,
		StepSearch, StepPromoCode, StepEditQty,
		StepAdminAddName, StepAdminAddPrice, StepAdminAddDescription,
		StepAdminAddImage, StepAdminAddCategory, StepAdminDeleteName,
	}
}

type transitions map[Step]map[Event]Step

var table = transitions{
	StepIdle: {
		EventStart: StepOrderName,
	},
	StepOrderName: {
		EventText: StepOrderPhone,
	},
	StepOrderPhone: {
		EventText:    StepOrderLocation,
		EventContact: StepOrderLocation,
	},
	StepOrderLocation: {
		EventText:     StepDone,
		EventLocation: StepAwaitingSubmit,
		EventContact:  StepAwaitingSubmit,
	},
	StepAwaitingSubmit: {
		EventSubmit: StepConfirmation,
	},
	StepConfirmation: {
		EventConfirmYes: StepDone,
		EventConfirmNo:  StepAwaitingSubmit,
	},

	StepSearch:    {EventText: StepIdle},
	StepPromoCode: {EventText: StepIdle},
	StepEditQty:   {EventText: StepIdle},

	StepAdminAddName:        {EventText: StepAdminAddPrice},
	StepAdminAddPrice:       {EventText: StepAdminAddDescription},
	StepAdminAddDescription: {EventText: StepAdminAddImage},
	StepAdminAddImage:       {EventText: StepAdminAddCategory},
	StepAdminAddCategory:    {EventText: StepDone},
	StepAdminDeleteName:     {EventText: StepDone},
}

// Next returns the step that follows s on event e. Back always abandons the
// active workflow. ok is false when e is not accepted in s.
func Next(s Step, e Event) (next Step, ok bool) {
	if e == EventBack {
		return StepDone, true
	}
	next, ok = table[s][e]
	return next, ok
}

// Accepts reports whether s has a transition for e.
func Accepts(s Step, e Event) bool {
	_, ok := Next(s, e)
	return ok
}
