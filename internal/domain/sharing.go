package domain

import "time"

// SharePermission is what a dashboard share grants the viewer.
type SharePermission string

const (
	PermissionView SharePermission = "VIEW"
	PermissionEdit SharePermission = "EDIT"
)

// ValidSharePermission reports whether s is a recognized permission.
func ValidSharePermission(s string) bool {
	switch SharePermission(s) {
	case PermissionView, PermissionEdit:
		return true
	}
	return false
}

// InvitationStatus follows PENDING -> ACCEPTED | DECLINED | EXPIRED.
// The three non-pending states are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// DashboardShare grants ViewerID read (and with EDIT, write) access to
// OwnerID's dashboard. At most one share exists per (owner, viewer) pair.
type DashboardShare struct {
	ID         string          `db:"id" json:"id"`
	OwnerID    string          `db:"owner_id" json:"owner_id"`
	ViewerID   string          `db:"viewer_id" json:"viewer_id"`
	Permission SharePermission `db:"permission" json:"permission"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Invitation is a time-boxed offer to create a DashboardShare. RecipientID
// stays nil until the invited email maps to a registered user.
type Invitation struct {
	ID          string           `db:"id" json:"id"`
	SenderID    string           `db:"sender_id" json:"sender_id"`
	RecipientID *string          `db:"recipient_id" json:"recipient_id,omitempty"`
	Email       string           `db:"email" json:"email"`
	Permission  SharePermission  `db:"permission" json:"permission"`
	Status      InvitationStatus `db:"status" json:"status"`
	ExpiresAt   time.Time        `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
