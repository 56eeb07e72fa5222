package listings

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
	StatusRemoved  Status = "removed"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusActive: true, StatusRejected: true, StatusRemoved: true},
	StatusActive:   {StatusSold: true, StatusRemoved: true},
	StatusRejected: {StatusRemoved: true},
	StatusSold:     {StatusRemoved: true},
	StatusRemoved:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionFlag    = "flag"
	ActionUnflag  = "unflag"
	ActionRemove  = "remove"
	ActionSold    = "sold"
)

// BulkActions lists the actions accepted by Service.Bulk.
var BulkActions = map[string]bool{
	ActionApprove: true,
	ActionReject:  true,
	ActionFlag:    true,
	ActionRemove:  true,
}
