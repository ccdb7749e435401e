package dates

// Verdict is the outcome of an advisory date check. External calendars can
// confirm a date or abstain; they never reject one.
type Verdict int

const (
	// VerdictUnavailable means the check could not be performed. Callers
	// decide whether to proceed or ask the customer again.
	VerdictUnavailable Verdict = iota
	// VerdictValidated means the calendar for the date's year was reachable
	// and the date is acceptable.
	VerdictValidated
)

func (v Verdict) String() string {
	if v == VerdictValidated {
		return "validated"
	}
	return "unavailable"
}
