package application

import "github.com/example/fitness-manager/internal/gym"

// Rule decides whether principal may perform an action on row. row is nil for
// list operations.
type Rule[T any] func(principal Principal, row *T) bool

// Policy maps each action to its rule. Actions without a rule are reserved for
// administrators.
type Policy[T any] map[Action]Rule[T]

func (p Policy[T]) allows(principal Principal, action Action, row *T) bool {
	if !principal.Authenticated() {
		return false
	}
	if principal.IsAdmin() {
		return true
	}
	rule, ok := p[action]
	if !ok || rule == nil {
		return false
	}
	return rule(principal, row)
}

func anyone[T any](Principal, *T) bool { return true }

// studentOwns allows a student acting on rows that belong to its own user.
func studentOwns[T any](userID func(*T) int64) Rule[T] {
	return func(p Principal, row *T) bool {
		return p.Role == gym.RoleStudent && p.UserID != 0 && row != nil && userID(row) == p.UserID
	}
}

// coachOwns allows a coach acting on rows that reference its own coach row.
func coachOwns[T any](coachID func(*T) int64) Rule[T] {
	return func(p Principal, row *T) bool {
		return p.Role == gym.RoleCoach && p.CoachID != 0 && row != nil && coachID(row) == p.CoachID
	}
}

func roleIs[T any](role gym.Role) Rule[T] {
	return func(p Principal, _ *T) bool { return p.Role == role }
}

func anyOf[T any](rules ...Rule[T]) Rule[T] {
	return func(p Principal, row *T) bool {
		for _, rule := range rules {
			if rule(p, row) {
				return true
			}
		}
		return false
	}
}

// readOnly lets every authenticated principal list and fetch rows.
func readOnly[T any]() Policy[T] {
	return Policy[T]{ActionList: anyone[T], ActionGet: anyone[T]}
}
