package services

import (
	"errors"
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"
	"travel-voucher-api/utils"

	"gorm.io/gorm"
)

// TripService owns the trip ledger. Trips stay mutable only while the voucher
// for their calendar period is still draft (or does not exist yet); once a
// voucher leaves draft its trip set is frozen.
type TripService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewTripService(db *gorm.DB) *TripService {
	if db == nil {
		db = config.DB
	}
	return &TripService{db: db, audit: NewAuditService(db)}
}

// TripInput is the caller-supplied trip payload. Miles come pre-computed from
// the geocoding collaborator; zero is an accepted placeholder.
type TripInput struct {
	TripDate    time.Time
	Miles       float64
	Lodging     float64
	Meals       float64
	Other       float64
	Description string
}

func (in TripInput) validate() error {
	if in.TripDate.IsZero() {
		return validationErr("trip_date", "is required")
	}
	if in.Miles < 0 {
		return validationErr("miles_calculated", "must not be negative")
	}
	if in.Lodging < 0 || in.Meals < 0 || in.Other < 0 {
		return validationErr("expenses", "must not be negative")
	}
	return nil
}

// AddTrip records a new trip for the actor and refreshes the period's draft
// voucher totals when one exists.
func (s *TripService) AddTrip(actor *models.User, in TripInput, meta RequestMeta) (*models.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	month, year := int(in.TripDate.Month()), in.TripDate.Year()
	voucher, err := s.periodVoucher(actor.UserID, month, year)
	if err != nil {
		return nil, err
	}
	if voucher != nil && !voucher.IsDraft() {
		return nil, validationErr("trip_date", "voucher for "+utils.PeriodLabel(month, year)+" is no longer draft")
	}

	now := time.Now()
	trip := models.Trip{
		OwnerID:         actor.UserID,
		TripDate:        in.TripDate,
		MilesCalculated: in.Miles,
		LodgingExpense:  in.Lodging,
		MealsExpense:    in.Meals,
		OtherExpense:    in.Other,
		CreateAt:        now,
		UpdateAt:        now,
	}
	if desc := in.Description; desc != "" {
		trip.Description = &desc
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}
		if voucher != nil {
			if err := refreshDraftVoucherTotals(tx, voucher); err != nil {
				return err
			}
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionTripCreate,
			ResourceType: models.AuditResourceTrip,
			ResourceID:   trip.TripID,
			Details: models.AuditDetails{
				"trip_date": in.TripDate.Format("2006-01-02"),
				"miles":     in.Miles,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// UpdateTrip edits an existing trip. Both the old period and, when the date
// moves, the new period must still be open for changes.
func (s *TripService) UpdateTrip(actor *models.User, tripID int, in TripInput, meta RequestMeta) (*models.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	trip, err := s.loadTrip(tripID)
	if err != nil {
		return nil, err
	}
	if trip.OwnerID != actor.UserID {
		return nil, permissionErr("only the trip owner may edit it")
	}

	oldMonth, oldYear := trip.Period()
	oldVoucher, err := s.lockedPeriodCheck(actor.UserID, oldMonth, oldYear, trip.TripID)
	if err != nil {
		return nil, err
	}

	newMonth, newYear := int(in.TripDate.Month()), in.TripDate.Year()
	newVoucher := oldVoucher
	if newMonth != oldMonth || newYear != oldYear {
		newVoucher, err = s.lockedPeriodCheck(actor.UserID, newMonth, newYear, trip.TripID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"trip_date":        in.TripDate,
			"miles_calculated": in.Miles,
			"lodging_expense":  in.Lodging,
			"meals_expense":    in.Meals,
			"other_expense":    in.Other,
			"update_at":        now,
		}
		if in.Description != "" {
			updates["description"] = in.Description
		}
		if err := tx.Model(&models.Trip{}).
			Where("trip_id = ?", trip.TripID).
			Updates(updates).Error; err != nil {
			return err
		}
		if oldVoucher != nil {
			if err := refreshDraftVoucherTotals(tx, oldVoucher); err != nil {
				return err
			}
		}
		if newVoucher != nil && (oldVoucher == nil || newVoucher.VoucherID != oldVoucher.VoucherID) {
			if err := refreshDraftVoucherTotals(tx, newVoucher); err != nil {
				return err
			}
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionTripUpdate,
			ResourceType: models.AuditResourceTrip,
			ResourceID:   trip.TripID,
			Details: models.AuditDetails{
				"trip_date": in.TripDate.Format("2006-01-02"),
				"miles":     in.Miles,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadTrip(trip.TripID)
}

// DeleteTrip soft-deletes a trip while its period is still open.
func (s *TripService) DeleteTrip(actor *models.User, tripID int, meta RequestMeta) error {
	trip, err := s.loadTrip(tripID)
	if err != nil {
		return err
	}
	if trip.OwnerID != actor.UserID {
		return permissionErr("only the trip owner may delete it")
	}

	month, year := trip.Period()
	voucher, err := s.lockedPeriodCheck(actor.UserID, month, year, trip.TripID)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Trip{}).
			Where("trip_id = ?", trip.TripID).
			Updates(map[string]interface{}{"delete_at": now, "update_at": now}).Error; err != nil {
			return err
		}
		if voucher != nil {
			if err := refreshDraftVoucherTotals(tx, voucher); err != nil {
				return err
			}
		}
		_, err := s.audit.Append(tx, AuditRecord{
			Actor:        actor,
			Action:       models.AuditActionTripDelete,
			ResourceType: models.AuditResourceTrip,
			ResourceID:   trip.TripID,
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
		})
		return err
	})
}

// ListTrips returns the actor's trips for one period.
func (s *TripService) ListTrips(actor *models.User, month, year int) ([]models.Trip, error) {
	if err := utils.ValidPeriod(month, year); err != nil {
		return nil, validationErr("period", err.Error())
	}
	return periodTrips(s.db, actor.UserID, month, year)
}

func (s *TripService) loadTrip(tripID int) (*models.Trip, error) {
	var trip models.Trip
	if err := s.db.Where("trip_id = ? AND delete_at IS NULL", tripID).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("trip")
		}
		return nil, err
	}
	return &trip, nil
}

// periodVoucher fetches the owner's voucher for a period, nil when absent.
func (s *TripService) periodVoucher(ownerID, month, year int) (*models.Voucher, error) {
	var voucher models.Voucher
	err := s.db.Where("owner_id = ? AND month = ? AND year = ?", ownerID, month, year).
		First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// lockedPeriodCheck rejects edits once the period's voucher has left draft.
func (s *TripService) lockedPeriodCheck(ownerID, month, year, tripID int) (*models.Voucher, error) {
	voucher, err := s.periodVoucher(ownerID, month, year)
	if err != nil {
		return nil, err
	}
	if voucher != nil && !voucher.IsDraft() {
		return nil, conflictErr(models.AuditResourceTrip, tripID,
			"voucher "+voucher.VoucherNumber+" has left draft; its trips are frozen")
	}
	return voucher, nil
}

// periodTrips selects the live trips that aggregate into a period's voucher.
func periodTrips(db *gorm.DB, ownerID, month, year int) ([]models.Trip, error) {
	start, end := utils.PeriodBounds(month, year)
	var trips []models.Trip
	err := db.Where("owner_id = ? AND delete_at IS NULL AND trip_date >= ? AND trip_date < ?",
		ownerID, start, end).
		Order("trip_date ASC, trip_id ASC").
		Find(&trips).Error
	return trips, err
}

// refreshDraftVoucherTotals recomputes and persists a draft voucher's totals
// from its currently linked trips, inside the caller's transaction. The
// update is guarded on status so a voucher that left draft after the caller's
// read can never have its frozen snapshot rewritten; the loser of that race
// gets a ConflictError and rolls back.
func refreshDraftVoucherTotals(tx *gorm.DB, voucher *models.Voucher) error {
	trips, err := periodTrips(tx, voucher.OwnerID, voucher.Month, voucher.Year)
	if err != nil {
		return err
	}
	totals := ComputeVoucherTotals(trips, voucher.MileageRate)
	res := tx.Model(&models.Voucher{}).
		Where("voucher_id = ? AND status = ?", voucher.VoucherID, models.VoucherStatusDraft).
		Updates(map[string]interface{}{
			"total_miles":  totals.Miles,
			"total_amount": totals.Amount,
			"update_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflictErr(models.AuditResourceVoucher, voucher.VoucherID,
			"voucher was modified concurrently")
	}
	return nil
}
