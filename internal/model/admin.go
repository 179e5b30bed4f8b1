package model

import (
	"time"

	"github.com/google/uuid"
)

// Canonical action names. "create" and "update" normalize to ActionWrite.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// RoleAdmin is the only role currently issued; historical tiers collapsed into it.
const RoleAdmin = "admin"

// KnownResources lists every protected resource category permission grants can target.
var KnownResources = []string{
	"products",
	"orders",
	"customers",
	"support_tickets",
	"shipping_zones",
	"shipping_rates",
	"admin_users",
	"audit_logs",
}

// KnownActions lists every action a grant can contain, post-normalization.
var KnownActions = []string{ActionRead, ActionWrite, ActionDelete}

// PermissionSet maps a resource name to the actions granted on it.
// Stored as a JSONB document on the admin row.
type PermissionSet map[string][]string

// Allows reports whether the set grants action on resource.
func (p PermissionSet) Allows(resource, action string) bool {
	for _, a := range p[resource] {
		if a == action {
			return true
		}
	}
	return false
}

// NormalizeAction folds create/update into the canonical write action.
func NormalizeAction(action string) string {
	if action == "create" || action == "update" {
		return ActionWrite
	}
	return action
}

// DefaultPermissions returns the grant document issued when an admin is
// created without an explicit one: every action on every known resource.
func DefaultPermissions() PermissionSet {
	perms := make(PermissionSet, len(KnownResources))
	for _, resource := range KnownResources {
		actions := make([]string, len(KnownActions))
		copy(actions, KnownActions)
		perms[resource] = actions
	}
	return perms
}

// AdminUser is a privileged identity record linked one-to-one with a
// registered end-user profile. Deactivated via IsActive, never deleted.
type AdminUser struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User        *User         `gorm:"foreignKey:UserID" json:"-"`
	Email       string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role        string        `gorm:"type:varchar(50);not null;default:'admin'" json:"role"`
	Permissions PermissionSet `gorm:"type:jsonb;serializer:json" json:"permissions"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}
