package services

import (
	"fmt"
	"log"
	"time"

	"travel-voucher-api/config"
	"travel-voucher-api/models"
	"travel-voucher-api/utils"

	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows and mirrors them to
// email. It runs after the owning transaction commits and never fails the
// mutation that triggered it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db}
}

var voucherStatusTitles = map[string]string{
	models.VoucherStatusSubmitted:          "Voucher submitted",
	models.VoucherStatusSupervisorApproved: "Voucher approved by supervisor",
	models.VoucherStatusApproved:           "Voucher approved for payment",
	models.VoucherStatusRejected:           "Voucher rejected",
}

// VoucherStatusChanged notifies the affected user about a completed
// transition. Errors are logged, not propagated.
func (s *NotificationService) VoucherStatusChanged(recipient *models.User, voucher *models.Voucher, newStatus string, reason string) {
	if recipient == nil || voucher == nil {
		return
	}

	title, ok := voucherStatusTitles[newStatus]
	if !ok {
		title = "Voucher updated"
	}
	message := fmt.Sprintf("Voucher %s (%02d/%04d) is now %s.",
		voucher.VoucherNumber, voucher.Month, voucher.Year, newStatus)
	if reason != "" {
		message += " Reason: " + reason
	}

	notifType := "info"
	switch newStatus {
	case models.VoucherStatusApproved:
		notifType = "success"
	case models.VoucherStatusRejected:
		notifType = "error"
	}

	voucherID := uint(voucher.VoucherID)
	notification := models.Notification{
		UserID:           uint(recipient.UserID),
		Title:            title,
		Message:          message,
		Type:             notifType,
		RelatedVoucherID: &voucherID,
		CreateAt:         time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for user %d: %v", recipient.UserID, err)
	}

	if !utils.ValidateEmail(recipient.Email) {
		return
	}
	email := recipient.Email
	go func() {
		body := fmt.Sprintf("<p>%s</p>", message)
		if err := config.SendMail([]string{email}, title, body); err != nil {
			log.Printf("Warning: failed to send voucher email to %s: %v", email, err)
		}
	}()
}

// AssignmentResolved notifies the requesting supervisor about the outcome of
// their reassignment request.
func (s *NotificationService) AssignmentResolved(recipient *models.User, request *models.AssignmentRequest) {
	if recipient == nil || request == nil {
		return
	}

	title := "Assignment request " + request.Status
	message := fmt.Sprintf("Your request for inspector %d was %s.", request.InspectorID, request.Status)

	notification := models.Notification{
		UserID:   uint(recipient.UserID),
		Title:    title,
		Message:  message,
		Type:     "info",
		CreateAt: time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for user %d: %v", recipient.UserID, err)
	}

	if !utils.ValidateEmail(recipient.Email) {
		return
	}
	email := recipient.Email
	go func() {
		body := fmt.Sprintf("<p>%s</p>", message)
		if err := config.SendMail([]string{email}, title, body); err != nil {
			log.Printf("Warning: failed to send assignment email to %s: %v", email, err)
		}
	}()
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID int, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("notification_id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID int, notificationID uint) error {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "update_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundErr("notification")
	}
	return nil
}
