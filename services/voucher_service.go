package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"
	"travel-voucher-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoucherService creates vouchers and keeps their totals consistent with the
// trip ledger. Exactly one voucher may exist per (owner, month, year); the
// vouchers table carries a unique index over those columns as the backstop
// for the pre-check below.
type VoucherService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	if db == nil {
		db = config.DB
	}
	return &VoucherService{db: db, audit: NewAuditService(db)}
}

// CreateVoucher opens a draft voucher for the actor's period, seeding totals
// from the trips already logged for that month.
func (s *VoucherService) CreateVoucher(actor *models.User, month, year int, meta RequestMeta) (*models.Voucher, error) {
	if err := utils.ValidPeriod(month, year); err != nil {
		return nil, validationErr("period", err.Error())
	}

	var existing models.Voucher
	err := s.db.Where("owner_id = ? AND month = ? AND year = ?", actor.UserID, month, year).
		First(&existing).Error
	if err == nil {
		return nil, conflictErr(models.AuditResourceVoucher, existing.VoucherID,
			"voucher already exists for "+utils.PeriodLabel(month, year))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rate := models.GetMileageRate(s.db)
	trips, err := periodTrips(s.db, actor.UserID, month, year)
	if err != nil {
		return nil, err
	}
	totals := ComputeVoucherTotals(trips, rate)

	now := time.Now()
	voucher := models.Voucher{
		VoucherNumber: generateVoucherNumber(month, year),
		OwnerID:       actor.UserID,
		Month:         month,
		Year:          year,
		Status:        models.VoucherStatusDraft,
		TotalMiles:    totals.Miles,
		TotalAmount:   totals.Amount,
		MileageRate:   rate,
		CreateAt:      now,
		UpdateAt:      now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&voucher).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictErr(models.AuditResourceVoucher, 0,
					"voucher already exists for "+utils.PeriodLabel(month, year))
			}
			return err
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionVoucherCreate,
			ResourceType: models.AuditResourceVoucher,
			ResourceID:   voucher.VoucherID,
			Details: models.AuditDetails{
				"month":        month,
				"year":         year,
				"mileage_rate": rate,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// GetVoucher loads one voucher the actor is allowed to see. Draft totals are
// recomputed from the ledger on every read so a stale row is never returned.
func (s *VoucherService) GetVoucher(actor *models.User, voucherID int) (*models.Voucher, error) {
	voucher, err := loadVoucher(s.db, voucherID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, voucher); err != nil {
		return nil, err
	}
	if voucher.IsDraft() {
		if err := refreshDraftVoucherTotals(s.db, voucher); err != nil {
			// A voucher that left draft between the read and the refresh
			// keeps its frozen snapshot; the reload below returns it.
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				return nil, err
			}
		}
		return loadVoucher(s.db, voucherID)
	}
	return voucher, nil
}

// VoucherFilter narrows ListVouchers.
type VoucherFilter struct {
	Status string
	Month  int
	Year   int
	Page   int
	Limit  int
}

// ListVouchers returns vouchers visible to the actor: inspectors see their
// own, supervisors additionally see their assigned inspectors', fleet
// managers and admins see everything.
func (s *VoucherService) ListVouchers(actor *models.User, filter VoucherFilter) ([]models.Voucher, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := s.db.Model(&models.Voucher{}).Preload("Owner")
	switch actor.Role {
	case models.RoleFleetManager, models.RoleAdmin:
		// unrestricted
	case models.RoleSupervisor:
		query = query.Where("owner_id = ? OR owner_id IN (?)", actor.UserID,
			s.db.Model(&models.User{}).Select("user_id").
				Where("assigned_supervisor_id = ? AND delete_at IS NULL", actor.UserID))
	default:
		query = query.Where("owner_id = ?", actor.UserID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Month != 0 {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vouchers []models.Voucher
	if err := query.Order("year DESC, month DESC, voucher_id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

func (s *VoucherService) authorizeView(actor *models.User, voucher *models.Voucher) error {
	if actor.UserID == voucher.OwnerID || actor.IsApproverRole() {
		return nil
	}
	if actor.Role == models.RoleSupervisor {
		var owner models.User
		if err := s.db.Where("user_id = ?", voucher.OwnerID).First(&owner).Error; err != nil {
			return err
		}
		if owner.AssignedSupervisorID != nil && *owner.AssignedSupervisorID == actor.UserID {
			return nil
		}
	}
	return permissionErr("not allowed to view this voucher")
}

func loadVoucher(db *gorm.DB, voucherID int) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := db.Preload("Owner").Where("voucher_id = ?", voucherID).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("voucher")
		}
		return nil, err
	}
	return &voucher, nil
}

// generateVoucherNumber builds a reference like TV-202601-9F3A2C1B.
func generateVoucherNumber(month, year int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TV-%04d%02d-%s", year, month, suffix)
}
