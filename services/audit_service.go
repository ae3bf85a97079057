package services

import (
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"

	"gorm.io/gorm"
)

// AuditService appends and queries the immutable audit trail. Append always
// runs on the caller's transaction so a failed audit write rolls the state
// mutation back with it; the service exposes no update or delete path.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	if db == nil {
		db = config.DB
	}
	return &AuditService{db: db}
}

// AuditRecord carries everything one trail entry needs.
type AuditRecord struct {
	Actor        *models.User
	Action       string
	ResourceType string
	ResourceID   int
	Details      models.AuditDetails
	IPAddress    string
	UserAgent    string
}

// Append writes one entry on the given transaction and returns it with the
// assigned monotonic id.
func (s *AuditService) Append(tx *gorm.DB, rec AuditRecord) (*models.AuditLogEntry, error) {
	if rec.Actor == nil {
		return nil, validationErr("actor", "is required")
	}
	if rec.Action == "" {
		return nil, validationErr("action", "is required")
	}
	if rec.ResourceType == "" {
		return nil, validationErr("resource_type", "is required")
	}

	entry := models.AuditLogEntry{
		ActorID:      rec.Actor.UserID,
		Action:       rec.Action,
		ResourceType: rec.ResourceType,
		ResourceID:   rec.ResourceID,
		Details:      rec.Details,
		IPAddress:    rec.IPAddress,
		CreatedAt:    time.Now(),
	}
	if rec.UserAgent != "" {
		ua := rec.UserAgent
		entry.UserAgent = &ua
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// AuditQuery filters the trail. Zero values mean "no filter".
type AuditQuery struct {
	ActorID      *int
	Action       string
	ResourceType string
	ResourceID   *int
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

// Query returns matching entries in log_id order together with the total
// count for pagination.
func (s *AuditService) Query(q AuditQuery) ([]models.AuditLogEntry, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	offset := (q.Page - 1) * q.Limit

	query := s.db.Model(&models.AuditLogEntry{})
	if q.ActorID != nil {
		query = query.Where("actor_id = ?", *q.ActorID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.ResourceType != "" {
		query = query.Where("resource_type = ?", q.ResourceType)
	}
	if q.ResourceID != nil {
		query = query.Where("resource_id = ?", *q.ResourceID)
	}
	if q.From != nil {
		query = query.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("created_at <= ?", *q.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLogEntry
	if err := query.Order("log_id ASC").Offset(offset).Limit(q.Limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
