package models

import "time"

// AssignmentRequest statuses. Pending is the only live state; approved,
// rejected and cancelled are terminal.
const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusApproved  = "approved"
	AssignmentStatusRejected  = "rejected"
	AssignmentStatusCancelled = "cancelled"
)

// AssignmentRequest is a supervisor's proposal to take over an inspector.
// Resolution requires the inspector's FLS-tier supervisor; the directory
// update and the request resolution commit in one transaction.
type AssignmentRequest struct {
	RequestID              int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	InspectorID            int        `gorm:"column:inspector_id" json:"inspector_id"`
	RequestingSupervisorID int        `gorm:"column:requesting_supervisor_id" json:"requesting_supervisor_id"`
	Status                 string     `gorm:"column:status" json:"status"`
	Reason                 string     `gorm:"column:reason" json:"reason"`
	ProcessedBy            *int       `gorm:"column:processed_by" json:"processed_by,omitempty"`
	ProcessedAt            *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CancelReason           *string    `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CreateAt               time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt               time.Time  `gorm:"column:update_at" json:"update_at"`

	// Relations
	Inspector            *User `gorm:"foreignKey:InspectorID" json:"inspector,omitempty"`
	RequestingSupervisor *User `gorm:"foreignKey:RequestingSupervisorID" json:"requesting_supervisor,omitempty"`
}

func (AssignmentRequest) TableName() string {
	return "assignment_requests"
}

// IsPending reports whether the request is still awaiting resolution.
func (r AssignmentRequest) IsPending() bool {
	return r.Status == AssignmentStatusPending
}
