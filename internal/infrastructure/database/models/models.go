package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"fullName" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(50);not null;index"`
	Description *string   `json:"description" gorm:"type:varchar(200)"`
	OwnerID     uint      `json:"ownerId" gorm:"index;not null"`
	Owner       User      `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type GroupMember struct {
	GroupID uint  `json:"groupId" gorm:"primaryKey"`
	Group   Group `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID  uint  `json:"userId" gorm:"primaryKey;index"`
	User    User  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

type Form struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Schema      string    `json:"schema" gorm:"type:jsonb;not null"`
	OwnerID     uint      `json:"ownerId" gorm:"index;not null"`
	Owner       User      `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
	GroupID     *uint     `json:"groupId" gorm:"index"`
	Group       *Group    `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL;"`
	Active      bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type FormPermission struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	FormID         uint   `json:"formId" gorm:"index;not null"`
	Form           Form   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	GroupID        uint   `json:"groupId" gorm:"index;not null"`
	Group          Group  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	PermissionType string `json:"permissionType" gorm:"type:varchar(16);not null"`
}

// FormSubmission deliberately has no foreign key to forms: submissions
// outlive their form and are transitioned by the cascade listener instead.
type FormSubmission struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	FormID                uint      `json:"formId" gorm:"index;not null"`
	UserID                uint      `json:"userId" gorm:"index;not null"`
	User                  User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Data                  string    `json:"data" gorm:"type:jsonb;not null"`
	Status                string    `json:"status" gorm:"type:varchar(32);not null;default:'SUBMITTED'"`
	SubmittedAt           time.Time `json:"submittedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt             time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	StatusChangedAt       time.Time `json:"statusChangedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	StatusChangedByUserID *uint     `json:"statusChangedByUserId"`
}
