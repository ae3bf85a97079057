package services

import (
	"errors"
	"strings"
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"

	"gorm.io/gorm"
)

// AssignmentService maintains the inspector→supervisor directory and the
// reassignment request workflow around it. The directory is only ever
// mutated here, and only together with the request resolution that justifies
// the change, in one transaction.
type AssignmentService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier *NotificationService
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	if db == nil {
		db = config.DB
	}
	return &AssignmentService{
		db:       db,
		audit:    NewAuditService(db),
		notifier: NewNotificationService(db),
	}
}

// RequestAssignment opens a pending reassignment request for an inspector.
// At most one pending request may exist per inspector; the table carries a
// unique index on inspector_id restricted to status='pending' as the backstop.
func (s *AssignmentService) RequestAssignment(actor *models.User, inspectorID int, reason string, meta RequestMeta) (*models.AssignmentRequest, error) {
	if actor.Role != models.RoleSupervisor {
		return nil, permissionErr("only a supervisor may request an assignment")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErr("reason", "is required")
	}

	inspector, err := s.loadInspector(inspectorID)
	if err != nil {
		return nil, err
	}
	if inspector.AssignedSupervisorID != nil && *inspector.AssignedSupervisorID == actor.UserID {
		return nil, validationErr("inspector_id", "inspector is already assigned to you")
	}

	var pending models.AssignmentRequest
	err = s.db.Where("inspector_id = ? AND status = ?", inspectorID, models.AssignmentStatusPending).
		First(&pending).Error
	if err == nil {
		return nil, conflictErr(models.AuditResourceAssignmentRequest, pending.RequestID,
			"a pending request already exists for this inspector")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	request := models.AssignmentRequest{
		InspectorID:            inspectorID,
		RequestingSupervisorID: actor.UserID,
		Status:                 models.AssignmentStatusPending,
		Reason:                 reason,
		CreateAt:               now,
		UpdateAt:               now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictErr(models.AuditResourceAssignmentRequest, 0,
					"a pending request already exists for this inspector")
			}
			return err
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionAssignmentRequest,
			ResourceType: models.AuditResourceAssignmentRequest,
			ResourceID:   request.RequestID,
			Details: models.AuditDetails{
				"inspector_id": inspectorID,
				"reason":       reason,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ProcessRequest resolves a pending request. Only the inspector's FLS-tier
// supervisor may decide. Approval rewrites the directory and marks the
// request approved in the same transaction so two supervisors can never both
// believe they own the inspector.
func (s *AssignmentService) ProcessRequest(actor *models.User, requestID int, decision string, meta RequestMeta) (*models.AssignmentRequest, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != "approve" && decision != "reject" {
		return nil, validationErr("decision", "must be either 'approve' or 'reject'")
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, validationErr("status", "request is already "+request.Status)
	}

	inspector, err := s.loadInspector(request.InspectorID)
	if err != nil {
		return nil, err
	}
	if inspector.FLSSupervisorID == nil || *inspector.FLSSupervisorID != actor.UserID {
		return nil, permissionErr("only the inspector's FLS-tier supervisor may process this request")
	}

	newStatus := models.AssignmentStatusApproved
	auditAction := models.AuditActionAssignmentApprove
	if decision == "reject" {
		newStatus = models.AssignmentStatusRejected
		auditAction = models.AuditActionAssignmentReject
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AssignmentRequest{}).
			Where("request_id = ? AND status = ?", request.RequestID, models.AssignmentStatusPending).
			Updates(map[string]interface{}{
				"status":       newStatus,
				"processed_by": actor.UserID,
				"processed_at": now,
				"update_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr(models.AuditResourceAssignmentRequest, request.RequestID,
				"request was resolved concurrently")
		}

		if newStatus == models.AssignmentStatusApproved {
			if err := tx.Model(&models.User{}).
				Where("user_id = ?", inspector.UserID).
				Updates(map[string]interface{}{
					"assigned_supervisor_id": request.RequestingSupervisorID,
					"update_at":              now,
				}).Error; err != nil {
				return err
			}
		}

		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       auditAction,
			ResourceType: models.AuditResourceAssignmentRequest,
			ResourceID:   request.RequestID,
			Details: models.AuditDetails{
				"inspector_id":  request.InspectorID,
				"supervisor_id": request.RequestingSupervisorID,
				"decision":      decision,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.loadRequest(request.RequestID)
	if err != nil {
		return nil, err
	}
	var requester models.User
	if err := s.db.Where("user_id = ?", updated.RequestingSupervisorID).First(&requester).Error; err == nil {
		s.notifier.AssignmentResolved(&requester, updated)
	}
	return updated, nil
}

// CancelRequest lets the original requester withdraw a still-pending request.
// The reason is mandatory and recorded on both the row and the audit entry.
func (s *AssignmentService) CancelRequest(actor *models.User, requestID int, reason string, meta RequestMeta) (*models.AssignmentRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErr("reason", "is required")
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestingSupervisorID != actor.UserID {
		return nil, permissionErr("only the requester may cancel this request")
	}
	if !request.IsPending() {
		return nil, validationErr("status", "request is already "+request.Status)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AssignmentRequest{}).
			Where("request_id = ? AND status = ?", request.RequestID, models.AssignmentStatusPending).
			Updates(map[string]interface{}{
				"status":        models.AssignmentStatusCancelled,
				"cancel_reason": reason,
				"update_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr(models.AuditResourceAssignmentRequest, request.RequestID,
				"request was resolved concurrently")
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionAssignmentCancel,
			ResourceType: models.AuditResourceAssignmentRequest,
			ResourceID:   request.RequestID,
			Details: models.AuditDetails{
				"inspector_id": request.InspectorID,
				"reason":       reason,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(request.RequestID)
}

// GetAssignment is the read-only directory lookup: the inspector's currently
// assigned supervisor, or nil while unassigned.
func (s *AssignmentService) GetAssignment(inspectorID int) (*models.User, error) {
	inspector, err := s.loadInspector(inspectorID)
	if err != nil {
		return nil, err
	}
	if inspector.AssignedSupervisorID == nil {
		return nil, nil
	}
	var supervisor models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", *inspector.AssignedSupervisorID).
		First(&supervisor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supervisor, nil
}

// ListRequests returns requests visible to the actor: admins see all,
// supervisors see what they filed plus what awaits their FLS decision.
func (s *AssignmentService) ListRequests(actor *models.User, status string) ([]models.AssignmentRequest, error) {
	query := s.db.Model(&models.AssignmentRequest{}).
		Preload("Inspector").
		Preload("RequestingSupervisor")

	switch actor.Role {
	case models.RoleAdmin, models.RoleFleetManager:
		// unrestricted
	case models.RoleSupervisor:
		query = query.Where("requesting_supervisor_id = ? OR inspector_id IN (?)", actor.UserID,
			s.db.Model(&models.User{}).Select("user_id").
				Where("fls_supervisor_id = ? AND delete_at IS NULL", actor.UserID))
	default:
		query = query.Where("inspector_id = ?", actor.UserID)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.AssignmentRequest
	err := query.Order("request_id DESC").Find(&requests).Error
	return requests, err
}

func (s *AssignmentService) loadRequest(requestID int) (*models.AssignmentRequest, error) {
	var request models.AssignmentRequest
	if err := s.db.Where("request_id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("assignment request")
		}
		return nil, err
	}
	return &request, nil
}

func (s *AssignmentService) loadInspector(inspectorID int) (*models.User, error) {
	var inspector models.User
	err := s.db.Where("user_id = ? AND role = ? AND delete_at IS NULL", inspectorID, models.RoleInspector).
		First(&inspector).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("inspector")
		}
		return nil, err
	}
	return &inspector, nil
}
