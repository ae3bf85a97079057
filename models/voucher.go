package models

import "time"

// Voucher statuses. The forward path is draft → submitted →
// supervisor_approved → approved; rejected is reachable from submitted or
// supervisor_approved. Approved and rejected are terminal.
const (
	VoucherStatusDraft              = "draft"
	VoucherStatusSubmitted          = "submitted"
	VoucherStatusSupervisorApproved = "supervisor_approved"
	VoucherStatusApproved           = "approved"
	VoucherStatusRejected           = "rejected"
)

// Voucher is one user's aggregated reimbursement claim for a calendar month.
// Totals are always recomputed from the linked trips, never hand-edited.
type Voucher struct {
	VoucherID            int        `gorm:"primaryKey;column:voucher_id" json:"voucher_id"`
	VoucherNumber        string     `gorm:"column:voucher_number;unique" json:"voucher_number"`
	OwnerID              int        `gorm:"column:owner_id" json:"owner_id"`
	Month                int        `gorm:"column:month" json:"month"`
	Year                 int        `gorm:"column:year" json:"year"`
	Status               string     `gorm:"column:status" json:"status"`
	TotalMiles           float64    `gorm:"column:total_miles" json:"total_miles"`
	TotalAmount          float64    `gorm:"column:total_amount" json:"total_amount"`
	MileageRate          float64    `gorm:"column:mileage_rate" json:"mileage_rate"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	SupervisorApprovedAt *time.Time `gorm:"column:supervisor_approved_at" json:"supervisor_approved_at,omitempty"`
	FleetApprovedAt      *time.Time `gorm:"column:fleet_approved_at" json:"fleet_approved_at,omitempty"`
	RejectionReason      *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             time.Time  `gorm:"column:update_at" json:"update_at"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// IsDraft reports whether the voucher still accepts trip changes.
func (v Voucher) IsDraft() bool {
	return v.Status == VoucherStatusDraft
}

// IsTerminal reports whether the voucher can take no further transitions.
func (v Voucher) IsTerminal() bool {
	return v.Status == VoucherStatusApproved || v.Status == VoucherStatusRejected
}
