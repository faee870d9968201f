package formhive

import (
	"time"
)

// FieldType classifies a schema field for rendering and editing.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextarea    FieldType = "TEXTAREA"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeEmail       FieldType = "EMAIL"
	FieldTypePhone       FieldType = "PHONE"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeDatetime    FieldType = "DATETIME"
	FieldTypeBoolean     FieldType = "BOOLEAN"
	FieldTypeDropdown    FieldType = "DROPDOWN"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeFile        FieldType = "FILE"
	FieldTypeMultiSelect FieldType = "MULTI_SELECT"
)

// FieldOption is one selectable value/label pair of an enumerated field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldValidation carries the raw constraint markers of a field. It is only
// present when the schema declares at least one constraint.
type FieldValidation struct {
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	MinValue         *float64 `json:"minValue,omitempty"`
	MaxValue         *float64 `json:"maxValue,omitempty"`
	Pattern          *string  `json:"pattern,omitempty"`
	CustomValidation *string  `json:"customValidation,omitempty"`
}

// FormField is the parsed, typed descriptor of one schema field.
type FormField struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Type         FieldType        `json:"type"`
	Required     bool             `json:"required"`
	Placeholder  *string          `json:"placeholder,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Options      []FieldOption    `json:"options,omitempty"`
	Validation   *FieldValidation `json:"validation,omitempty"`
	DefaultValue any              `json:"defaultValue,omitempty"`
	Order        int              `json:"order"`
}

// FormStructure is the render/edit view of a form.
type FormStructure struct {
	FormID      uint        `json:"formId"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
	OwnerName   string      `json:"ownerName"`
	IsGroupForm bool        `json:"isGroupForm"`
	GroupName   *string     `json:"groupName,omitempty"`
}

// ReportRow is one aggregate result record.
type ReportRow struct {
	Group       any    `json:"group"`
	Aggregation string `json:"aggregation"`
	Field       string `json:"field"`
	Value       any    `json:"value"`
}

// AvailableForm is one row of a user's form listing.
type AvailableForm struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	OwnerName   string    `json:"ownerName"`
	CreatedAt   time.Time `json:"createdAt"`
	IsGroupForm bool      `json:"isGroupForm"`
	GroupName   *string   `json:"groupName,omitempty"`
}

// AvailableFormsPage is a paginated form listing.
type AvailableFormsPage struct {
	Forms         []AvailableForm `json:"forms"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	CurrentPage   int             `json:"currentPage"`
	PageSize      int             `json:"pageSize"`
	Message       *string         `json:"message,omitempty"`
}

// SubmissionView is the submitter-facing view of one submission.
type SubmissionView struct {
	ID              uint           `json:"id"`
	FormID          uint           `json:"formId"`
	FormTitle       string         `json:"formTitle"`
	Status          string         `json:"status"`
	SubmittedAt     time.Time      `json:"submittedAt"`
	StatusChangedAt time.Time      `json:"statusChangedAt"`
	Data            map[string]any `json:"data"`
	StatusChangedBy *string        `json:"statusChangedBy,omitempty"`
}

// SubmissionsPage is a paginated listing of a user's submissions.
type SubmissionsPage struct {
	Submissions   []SubmissionView `json:"submissions"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
	PageSize      int              `json:"pageSize"`
}

// FormSubmissionRow is the owner-facing view of one submission of a form.
type FormSubmissionRow struct {
	SubmissionID  uint           `json:"submissionId"`
	UserID        uint           `json:"userId"`
	SubmitterName string         `json:"submitterName"`
	SubmittedAt   time.Time      `json:"submittedAt"`
	FormData      map[string]any `json:"formData"`
	Status        string         `json:"status"`
}

// FormSubmissionsPage is the owner-facing listing of a form's submissions.
type FormSubmissionsPage struct {
	Submissions      []FormSubmissionRow `json:"submissions"`
	TotalSubmissions int64               `json:"totalSubmissions"`
	Message          *string             `json:"message,omitempty"`
}

// SubmitResult is returned after creating or editing a submission.
type SubmitResult struct {
	ID          uint      `json:"id"`
	FormID      uint      `json:"formId"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
	Message     string    `json:"message"`
}

// DeletionResult is returned after a form deletion is initiated.
type DeletionResult struct {
	FormID             uint   `json:"formId"`
	Message            string `json:"message"`
	SubmissionsUpdated int64  `json:"submissionsUpdated"`
}

// PermissionAssignment binds a group to a form with one permission type.
type PermissionAssignment struct {
	GroupID        uint   `json:"groupId"`
	PermissionType string `json:"permissionType"`
}

// PermissionView is one granted permission with its group name.
type PermissionView struct {
	GroupID        uint   `json:"groupId"`
	GroupName      string `json:"groupName"`
	PermissionType string `json:"permissionType"`
}

// Event is one realtime notification delivered over the websocket feed.
type Event struct {
	Type         string    `json:"type"`
	FormID       uint      `json:"formId"`
	SubmissionID uint      `json:"submissionId,omitempty"`
	UserID       uint      `json:"userId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	EventSubmissionCreated = "submission.created"
	EventFormDeleted       = "form.deleted"
)
