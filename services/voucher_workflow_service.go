package services

import (
	"strings"
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"

	"gorm.io/gorm"
)

// VoucherWorkflowService drives vouchers through their lifecycle using the
// transition table. Each transition is one transaction: a status-guarded
// update plus exactly one audit entry. Concurrent attempts on the same
// voucher serialize on the guard; the loser sees zero affected rows and gets
// a ConflictError instead of silently overwriting.
type VoucherWorkflowService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier *NotificationService
}

func NewVoucherWorkflowService(db *gorm.DB) *VoucherWorkflowService {
	if db == nil {
		db = config.DB
	}
	return &VoucherWorkflowService{
		db:       db,
		audit:    NewAuditService(db),
		notifier: NewNotificationService(db),
	}
}

// Submit moves an owner's draft voucher to submitted, persisting the final
// totals snapshot. From here on the period's trips are frozen.
func (s *VoucherWorkflowService) Submit(actor *models.User, voucherID int, meta RequestMeta) (*models.Voucher, error) {
	return s.transition(actor, voucherID, VoucherActionSubmit, "", meta)
}

// ApproveSupervisor records the assigned supervisor's approval.
func (s *VoucherWorkflowService) ApproveSupervisor(actor *models.User, voucherID int, meta RequestMeta) (*models.Voucher, error) {
	return s.transition(actor, voucherID, VoucherActionApproveSupervisor, "", meta)
}

// ApproveFleet records fleet-level approval, the terminal payable state.
func (s *VoucherWorkflowService) ApproveFleet(actor *models.User, voucherID int, meta RequestMeta) (*models.Voucher, error) {
	return s.transition(actor, voucherID, VoucherActionApproveFleet, "", meta)
}

// Reject terminates a voucher with a mandatory reason. Allowed for whoever
// could approve at the voucher's current stage.
func (s *VoucherWorkflowService) Reject(actor *models.User, voucherID int, reason string, meta RequestMeta) (*models.Voucher, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationErr("reason", "is required")
	}
	return s.transition(actor, voucherID, VoucherActionReject, strings.TrimSpace(reason), meta)
}

func (s *VoucherWorkflowService) transition(actor *models.User, voucherID int, action VoucherAction, reason string, meta RequestMeta) (*models.Voucher, error) {
	voucher, err := loadVoucher(s.db, voucherID)
	if err != nil {
		return nil, err
	}

	rule, err := resolveTransition(voucher.Status, action)
	if err != nil {
		return nil, err
	}
	if err := rule.authorize(actor, voucher); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":    rule.next,
		"update_at": now,
	}
	details := models.AuditDetails{
		"from": voucher.Status,
		"to":   rule.next,
	}

	switch action {
	case VoucherActionSubmit:
		if !actor.HasPosition() {
			return nil, validationErr("position", "profile must have a position before submitting")
		}
		trips, err := periodTrips(s.db, voucher.OwnerID, voucher.Month, voucher.Year)
		if err != nil {
			return nil, err
		}
		if len(trips) == 0 {
			return nil, validationErr("trips", "voucher must have at least one trip")
		}
		totals := ComputeVoucherTotals(trips, voucher.MileageRate)
		updates["total_miles"] = totals.Miles
		updates["total_amount"] = totals.Amount
		updates["submitted_at"] = now
		details["total_miles"] = totals.Miles
		details["total_amount"] = totals.Amount
	case VoucherActionApproveSupervisor:
		updates["supervisor_approved_at"] = now
	case VoucherActionApproveFleet:
		updates["fleet_approved_at"] = now
	case VoucherActionReject:
		updates["rejection_reason"] = reason
		details["reason"] = reason
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Voucher{}).
			Where("voucher_id = ? AND status = ?", voucher.VoucherID, voucher.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr(models.AuditResourceVoucher, voucher.VoucherID,
				"voucher was modified concurrently")
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       rule.auditAction,
			ResourceType: models.AuditResourceVoucher,
			ResourceID:   voucher.VoucherID,
			Details:      details,
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	updated, err := loadVoucher(s.db, voucher.VoucherID)
	if err != nil {
		return nil, err
	}
	s.notifier.VoucherStatusChanged(updated.Owner, updated, rule.next, reason)
	return updated, nil
}

// DeleteVoucher removes a voucher that is still draft. Owner only; the
// status guard turns a concurrent submit into a ConflictError here.
func (s *VoucherWorkflowService) DeleteVoucher(actor *models.User, voucherID int, meta RequestMeta) error {
	voucher, err := loadVoucher(s.db, voucherID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(actor, voucher); err != nil {
		return err
	}
	if !voucher.IsDraft() {
		return validationErr("status", "only draft vouchers can be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("voucher_id = ? AND status = ?", voucher.VoucherID, models.VoucherStatusDraft).
			Delete(&models.Voucher{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr(models.AuditResourceVoucher, voucher.VoucherID,
				"voucher was modified concurrently")
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionVoucherDelete,
			ResourceType: models.AuditResourceVoucher,
			ResourceID:   voucher.VoucherID,
			Details: models.AuditDetails{
				"voucher_number": voucher.VoucherNumber,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
}
