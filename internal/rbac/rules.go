package rbac

import "strings"

const (
	PermQuestionsView     = "questions:view"
	PermQuestionsOrganize = "questions:organize"
)

// Policy maps a role to permission patterns. A pattern is an exact
// permission, a prefix ending in "*", or "*" alone.
type Policy map[string][]string

// DefaultPolicy: teachers organize their banks, students may only read.
var DefaultPolicy = Policy{
	"student": {PermQuestionsView},
	"teacher": {"questions:*"},
	"admin":   {"*"},
}

// Allows reports whether role holds at least one of perms.
func (p Policy) Allows(role string, perms ...string) bool {
	for _, pattern := range p[role] {
		for _, perm := range perms {
			if matchPerm(pattern, perm) {
				return true
			}
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "*")
	return ok && strings.HasPrefix(perm, prefix)
}
