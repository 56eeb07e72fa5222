package disputes

type Status string

const (
	StatusOpen           Status = "open"
	StatusInvestigating  Status = "investigating"
	StatusResolvedBuyer  Status = "resolved_buyer"
	StatusResolvedSeller Status = "resolved_seller"
	StatusCancelled      Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusOpen:           {StatusInvestigating: true, StatusResolvedBuyer: true, StatusResolvedSeller: true, StatusCancelled: true},
	StatusInvestigating:  {StatusResolvedBuyer: true, StatusResolvedSeller: true, StatusCancelled: true},
	StatusResolvedBuyer:  {},
	StatusResolvedSeller: {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal statuses accept no further transitions or messages.
func (s Status) Terminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

func (s Status) Active() bool {
	return s == StatusOpen || s == StatusInvestigating
}

// Action names accepted by the single-item and bulk endpoints.
const (
	ActionInvestigate   = "investigate"
	ActionResolveBuyer  = "resolve_buyer"
	ActionResolveSeller = "resolve_seller"
	ActionCancel        = "cancel"
)

var actionTarget = map[string]Status{
	ActionInvestigate:   StatusInvestigating,
	ActionResolveBuyer:  StatusResolvedBuyer,
	ActionResolveSeller: StatusResolvedSeller,
	ActionCancel:        StatusCancelled,
}

// TargetFor maps an action name to the status it moves a dispute into.
func TargetFor(action string) (Status, bool) {
	s, ok := actionTarget[action]
	return s, ok
}
