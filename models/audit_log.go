package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Audit actions written by the core services.
const (
	AuditActionTripCreate        = "trip_create"
	AuditActionTripUpdate        = "trip_update"
	AuditActionTripDelete        = "trip_delete"
	AuditActionVoucherCreate     = "voucher_create"
	AuditActionVoucherSubmit     = "voucher_submit"
	AuditActionSupervisorApprove = "voucher_supervisor_approve"
	AuditActionFleetApprove      = "voucher_fleet_approve"
	AuditActionVoucherReject     = "voucher_reject"
	AuditActionVoucherDelete     = "voucher_delete"
	AuditActionAssignmentRequest = "assignment_request"
	AuditActionAssignmentApprove = "assignment_approve"
	AuditActionAssignmentReject  = "assignment_reject"
	AuditActionAssignmentCancel  = "assignment_cancel"
)

// Resource types referenced by audit entries.
const (
	AuditResourceTrip              = "trip"
	AuditResourceVoucher           = "voucher"
	AuditResourceAssignmentRequest = "assignment_request"
)

// AuditDetails is an open string→primitive map persisted as JSON. Values are
// limited to strings, numbers and booleans.
type AuditDetails map[string]interface{}

// Value serializes the details map for storage.
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	for key, value := range d {
		switch value.(type) {
		case nil, string, bool, int, int64, float64:
		default:
			return nil, fmt.Errorf("audit detail %q has non-primitive value %T", key, value)
		}
	}
	return json.Marshal(d)
}

// Scan deserializes the stored JSON details.
func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, d)
	case string:
		return json.Unmarshal([]byte(raw), d)
	default:
		return errors.New("unsupported audit details column type")
	}
}

// AuditLogEntry is one row of the append-only audit trail. Rows are written
// inside the same transaction as the mutation they record and are never
// updated or deleted.
type AuditLogEntry struct {
	LogID        int64        `gorm:"primaryKey;autoIncrement;column:log_id" json:"log_id"`
	ActorID      int          `gorm:"column:actor_id" json:"actor_id"`
	Action       string       `gorm:"column:action" json:"action"`
	ResourceType string       `gorm:"column:resource_type" json:"resource_type"`
	ResourceID   int          `gorm:"column:resource_id" json:"resource_id"`
	Details      AuditDetails `gorm:"column:details;type:json" json:"details,omitempty"`
	IPAddress    string       `gorm:"column:ip_address" json:"ip_address"`
	UserAgent    *string      `gorm:"column:user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"created_at"`

	// Relations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}
