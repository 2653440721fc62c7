package remedy

// State is a step of a remediation cycle.
type State int

const (
	Idle State = iota
	Detected
	Executing
	Waiting
	Rechecking
	Resolved
	Escalating
)

var stateNames = map[State]string{
	Idle:       "idle",
	Detected:   "detected",
	Executing:  "executing",
	Waiting:    "waiting",
	Rechecking: "rechecking",
	Resolved:   "resolved",
	Escalating: "escalating",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the result of a remediation cycle.
type Outcome int

const (
	// OutcomeResolved means the clock was back within the threshold at recheck.
	OutcomeResolved Outcome = iota
	// OutcomeUnresolvedNoReboot means the jump persisted and was tolerated.
	OutcomeUnresolvedNoReboot
	// OutcomeUnresolvedReboot means the jump persisted and reboot escalation ran.
	OutcomeUnresolvedReboot
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeUnresolvedNoReboot:
		return "unresolved-no-reboot"
	case OutcomeUnresolvedReboot:
		return "unresolved-reboot"
	default:
		return "unknown"
	}
}
