package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. Every tenant-owned row carries
// exactly one organization id, stamped at creation and immutable after.
type Organization struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name             string    `json:"name" gorm:"size:200;not null"`
	Slug             string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	SubscriptionTier string    `json:"subscription_tier" gorm:"size:50;default:'FREE'"`
	Status           string    `json:"status" gorm:"default:'ACTIVE'"`
	OwnerID          uuid.UUID `json:"owner_id" gorm:"type:uuid;not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
