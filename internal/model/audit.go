package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateAdminUser     = "CREATE_ADMIN_USER"
	ActionUpdateAdminPerms    = "UPDATE_ADMIN_PERMISSIONS"
	ActionDeactivateAdminUser = "DEACTIVATE_ADMIN_USER"
	ActionCreateShippingZone  = "CREATE_SHIPPING_ZONE"
	ActionUpdateShippingZone  = "UPDATE_SHIPPING_ZONE"
	ActionDeleteShippingZone  = "DELETE_SHIPPING_ZONE"
	ActionCreateShippingRate  = "CREATE_SHIPPING_RATE"
	ActionUpdateShippingRate  = "UPDATE_SHIPPING_RATE"
	ActionDeleteShippingRate  = "DELETE_SHIPPING_RATE"
)

// AuditLog tracks Who, What, and When for privileged mutations
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID    *uuid.UUID `gorm:"type:uuid;index" json:"admin_id"` // Nullable for system actions
	Admin      *AdminUser `gorm:"foreignKey:AdminID" json:"admin"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
