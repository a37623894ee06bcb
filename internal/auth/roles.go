package auth

// Role grades what a member may do. Ordinary members read as viewer, bureau
// members operate the day-to-day records, and the président or trésorier
// administers members, periods and backups.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	_, ok := roleRanks[role]
	if !ok {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role satisfies the required role. Unknown
// roles rank below viewer and never satisfy anything.
func RoleAtLeast(role Role, required Role) bool {
	return roleRanks[role] >= roleRanks[required] && roleRanks[role] > 0
}
