package models

// Document is a per-key JSON blob persisted by the document stores.
// Consumers read the whole document and patch named sections.
type Document map[string]interface{}

// Portal roles backing the per-role settings documents.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// ValidRole reports whether the portal role has a settings document.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}
