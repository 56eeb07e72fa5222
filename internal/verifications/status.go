package verifications

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:     {StatusUnderReview: true, StatusApproved: true, StatusRejected: true},
	StatusUnderReview: {StatusApproved: true, StatusRejected: true},
	StatusApproved:    {},
	StatusRejected:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

const (
	ActionReview  = "review"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var actionTarget = map[string]Status{
	ActionReview:  StatusUnderReview,
	ActionApprove: StatusApproved,
	ActionReject:  StatusRejected,
}

func TargetFor(action string) (Status, bool) {
	s, ok := actionTarget[action]
	return s, ok
}
