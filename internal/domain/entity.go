package domain

import (
	"encoding/json"
	"time"
)

// User is an account without persistence concerns.
type User struct {
	ID           uint      `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Form is an authored form. SchemaRaw keeps the schema document verbatim so
// property order survives storage.
type Form struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	SchemaRaw   json.RawMessage `json:"schema"`
	OwnerID     uint            `json:"ownerId"`
	OwnerName   string          `json:"ownerName"`
	GroupID     *uint           `json:"groupId,omitempty"`
	GroupName   *string         `json:"groupName,omitempty"`
	Active      bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Submission is one filled-out form.
type Submission struct {
	ID                    uint             `json:"id"`
	FormID                uint             `json:"formId"`
	FormTitle             string           `json:"formTitle"`
	UserID                uint             `json:"userId"`
	SubmitterName         string           `json:"submitterName"`
	Data                  map[string]any   `json:"data"`
	Status                SubmissionStatus `json:"status"`
	SubmittedAt           time.Time        `json:"submittedAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	StatusChangedAt       time.Time        `json:"statusChangedAt"`
	StatusChangedByUserID *uint            `json:"statusChangedByUserId,omitempty"`
}

// Group is a sharing unit; the owner is always among the members.
type Group struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	OwnerID     uint          `json:"ownerId"`
	Members     []GroupMember `json:"members,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// GroupMember is one user's membership in a group.
type GroupMember struct {
	UserID   uint   `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// FormPermission grants a group one permission type on a form.
type FormPermission struct {
	FormID         uint           `json:"formId"`
	GroupID        uint           `json:"groupId"`
	GroupName      string         `json:"groupName"`
	PermissionType PermissionType `json:"permissionType"`
}
