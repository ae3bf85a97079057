package models

import (
	"time"
)

// Role names stored on users.role. The core authorizes by role name plus
// the supervisor relations on the user row, never by session state.
const (
	RoleInspector    = "inspector"
	RoleSupervisor   = "supervisor"
	RoleFleetManager = "fleet_manager"
	RoleAdmin        = "admin"
)

type User struct {
	UserID               int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname            string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname            string     `gorm:"column:user_lname" json:"user_lname"`
	Email                string     `gorm:"column:email;unique" json:"email"`
	Password             string     `gorm:"column:password" json:"-"`
	Role                 string     `gorm:"column:role" json:"role"`
	PositionID           *int       `gorm:"column:position_id" json:"position_id,omitempty"`
	AssignedSupervisorID *int       `gorm:"column:assigned_supervisor_id" json:"assigned_supervisor_id,omitempty"`
	FLSSupervisorID      *int       `gorm:"column:fls_supervisor_id" json:"fls_supervisor_id,omitempty"`
	CreateAt             *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt             *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Position           *Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	AssignedSupervisor *User     `gorm:"foreignKey:AssignedSupervisorID" json:"assigned_supervisor,omitempty"`
}

type Position struct {
	PositionID   int        `gorm:"primaryKey;column:position_id" json:"position_id"`
	PositionName string     `gorm:"column:position_name" json:"position_name"`
	IsActive     string     `gorm:"column:is_active" json:"is_active"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Position) TableName() string {
	return "positions"
}

// IsApproverRole reports whether the role can act at the fleet approval stage.
func (u User) IsApproverRole() bool {
	return u.Role == RoleFleetManager || u.Role == RoleAdmin
}

// HasPosition reports whether the profile carries a position, which is
// required before a voucher can be submitted.
func (u User) HasPosition() bool {
	return u.PositionID != nil && *u.PositionID > 0
}
