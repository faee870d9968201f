package domain

type ctxKey string

const (
	// RequesterIDCtxKey holds the authenticated user id in a request context.
	RequesterIDCtxKey ctxKey = "fh-requesterId"
)

// PermissionType is the grant level of a form/group permission.
type PermissionType string

const (
	PermissionView   PermissionType = "VIEW"
	PermissionSubmit PermissionType = "SUBMIT"
	PermissionEdit   PermissionType = "EDIT"
)

// ParsePermissionType maps a request string onto a PermissionType.
func ParsePermissionType(s string) (PermissionType, bool) {
	switch PermissionType(s) {
	case PermissionView, PermissionSubmit, PermissionEdit:
		return PermissionType(s), true
	}
	return "", false
}

// SubmissionStatus is the lifecycle state of a submission.
type SubmissionStatus string

const (
	StatusSubmitted      SubmissionStatus = "SUBMITTED"
	StatusRemovedByOwner SubmissionStatus = "REMOVED_BY_OWNER"
)
