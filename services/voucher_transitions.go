package services

import (
	"fmt"

	"travel-voucher-api/models"
)

// VoucherAction names a state-machine operation.
type VoucherAction string

const (
	VoucherActionSubmit            VoucherAction = "submit"
	VoucherActionApproveSupervisor VoucherAction = "approve_supervisor"
	VoucherActionApproveFleet      VoucherAction = "approve_fleet"
	VoucherActionReject            VoucherAction = "reject"
)

type transitionKey struct {
	status string
	action VoucherAction
}

// transitionRule declares the target status, the audit action recorded for
// the transition, and the role-or-relationship check it requires.
type transitionRule struct {
	next        string
	auditAction string
	authorize   func(actor *models.User, voucher *models.Voucher) error
}

// voucherTransitions is the whole state machine: one entry per legal
// (current status, action) pair. Anything not listed here is invalid for the
// voucher's current state. Rejection at each stage is gated by the same check
// as approval at that stage.
var voucherTransitions = map[transitionKey]transitionRule{
	{models.VoucherStatusDraft, VoucherActionSubmit}: {
		next:        models.VoucherStatusSubmitted,
		auditAction: models.AuditActionVoucherSubmit,
		authorize:   authorizeOwner,
	},
	{models.VoucherStatusSubmitted, VoucherActionApproveSupervisor}: {
		next:        models.VoucherStatusSupervisorApproved,
		auditAction: models.AuditActionSupervisorApprove,
		authorize:   authorizeAssignedSupervisor,
	},
	{models.VoucherStatusSubmitted, VoucherActionReject}: {
		next:        models.VoucherStatusRejected,
		auditAction: models.AuditActionVoucherReject,
		authorize:   authorizeAssignedSupervisor,
	},
	{models.VoucherStatusSupervisorApproved, VoucherActionApproveFleet}: {
		next:        models.VoucherStatusApproved,
		auditAction: models.AuditActionFleetApprove,
		authorize:   authorizeFleetApprover,
	},
	{models.VoucherStatusSupervisorApproved, VoucherActionReject}: {
		next:        models.VoucherStatusRejected,
		auditAction: models.AuditActionVoucherReject,
		authorize:   authorizeFleetApprover,
	},
}

// resolveTransition looks up the rule for the voucher's current status. The
// error is a ValidationError so terminal or out-of-order actions surface as
// "invalid for current state", not as permission failures.
func resolveTransition(status string, action VoucherAction) (transitionRule, error) {
	rule, ok := voucherTransitions[transitionKey{status, action}]
	if !ok {
		return transitionRule{}, validationErr("status",
			fmt.Sprintf("%s is not valid while the voucher is %s", action, status))
	}
	return rule, nil
}

func authorizeOwner(actor *models.User, voucher *models.Voucher) error {
	if actor.UserID != voucher.OwnerID {
		return permissionErr("only the voucher owner may perform this action")
	}
	return nil
}

func authorizeAssignedSupervisor(actor *models.User, voucher *models.Voucher) error {
	owner := voucher.Owner
	if owner == nil {
		return permissionErr("voucher owner could not be resolved")
	}
	if owner.AssignedSupervisorID == nil || *owner.AssignedSupervisorID != actor.UserID {
		return permissionErr("only the owner's assigned supervisor may act at this stage")
	}
	return nil
}

func authorizeFleetApprover(actor *models.User, voucher *models.Voucher) error {
	if !actor.IsApproverRole() {
		return permissionErr("only a fleet manager or admin may act at this stage")
	}
	return nil
}
