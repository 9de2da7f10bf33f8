package sensor

// ProgramFinishedToken is the payload an appliance publishes when its program completes.
const ProgramFinishedToken = "ProgramFinished"

// ApplianceState is the debounce state of an ApplianceDone policy.
type ApplianceState int

// Appliance states.
const (
	// StateArmed means the next ProgramFinished payload will fire.
	StateArmed ApplianceState = iota
	// StateNotified means a completion was already reported.
	StateNotified
)

// String returns the state name.
func (s ApplianceState) String() string {
	if s == StateNotified {
		return "notified"
	}
	return "armed"
}

// ApplianceDone fires once when an appliance reports ProgramFinished and stays
// quiet until some other payload re-arms it.
//
// Transitions depend only on equality with ProgramFinishedToken, not on
// payload changes, so toggling between two other values never fires.
type ApplianceDone struct {
	state ApplianceState
}

// NewApplianceDone returns an armed policy.
func NewApplianceDone() *ApplianceDone {
	return &ApplianceDone{state: StateArmed}
}

// Kind implements Policy.
func (*ApplianceDone) Kind() Kind {
	return KindApplianceDone
}

// Evaluate implements Policy.
func (a *ApplianceDone) Evaluate(payload string) (bool, error) {
	if payload != ProgramFinishedToken {
		a.state = StateArmed
		return false, nil
	}
	if a.state == StateNotified {
		return false, nil
	}
	a.state = StateNotified
	return true, nil
}

// State returns the current debounce state.
func (a *ApplianceDone) State() ApplianceState {
	return a.state
}
