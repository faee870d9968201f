package domain

import "time"

// FormDeletedEvent is published when an owner deletes a form. A listener
// transitions the form's submissions out-of-band.
type FormDeletedEvent struct {
	FormID    uint      `json:"formId"`
	OwnerID   uint      `json:"ownerId"`
	DeletedAt time.Time `json:"deletedAt"`
}
