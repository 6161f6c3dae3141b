/*
Package models - Travel & Attendance Analytics Data Models

==============================================================================
FILE: internal/models/base.go
==============================================================================

DESCRIPTION:
    Defines the BaseModel struct that provides common fields (ID, timestamps)
    for every persistent row in the analytics store. Every other model in this
    package embeds this base model.

DEVELOPER GUIDELINES:
    ⚠️  All models MUST embed BaseModel as the first field
    📝  Example: type MyModel struct { BaseModel; OtherFields... }

    Unlike the HR models this package used to hold, rows here carry no
    DeletedAt column: a month's rows are destroyed by replace_month/
    delete_month, never soft-deleted, since the store's lifecycle contract
    is delete-then-insert, not an audit trail.

==============================================================================
*/
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common fields for all row kinds in the store.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate generates a new UUID for the ID field if it's not already set.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}
