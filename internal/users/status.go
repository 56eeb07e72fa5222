package users

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusBanned    Status = "banned"
	StatusPending   Status = "pending"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusActive: true, StatusSuspended: true, StatusBanned: true},
	StatusActive:    {StatusSuspended: true, StatusBanned: true},
	StatusSuspended: {StatusActive: true, StatusBanned: true},
	StatusBanned:    {StatusActive: true},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

const (
	ActionSuspend  = "suspend"
	ActionBan      = "ban"
	ActionActivate = "activate"
)

var actionTarget = map[string]Status{
	ActionSuspend:  StatusSuspended,
	ActionBan:      StatusBanned,
	ActionActivate: StatusActive,
}

func TargetFor(action string) (Status, bool) {
	s, ok := actionTarget[action]
	return s, ok
}
