package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

// Status pembayaran
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCancelled = "cancelled"
)

// PaymentService menangani siklus pembayaran order dine-in.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

func (s *PaymentService) CreatePayment(payment *models.Payment) error {
	return s.db.Create(payment).Error
}

func (s *PaymentService) GetPaymentByOrderID(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus mengubah status payment sekaligus status order terkait
// dalam satu transaksi.
func (s *PaymentService) UpdatePaymentStatus(paymentID uint, status string) error {
	tx := s.db.Begin()

	var payment models.Payment
	if err := tx.First(&payment, paymentID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find payment: %w", err)
	}

	payment.Status = status
	if status == PaymentStatusSuccess && payment.PaymentTime == nil {
		now := time.Now()
		payment.PaymentTime = &now
	}
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	var order models.Order
	if err := tx.First(&order, payment.OrderID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find order: %w", err)
	}

	switch status {
	case PaymentStatusSuccess:
		order.Status = models.OrderStatusPaid
	case PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCancelled:
		order.Status = models.OrderStatusCancelled
	}

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return tx.Commit().Error
}

// StartTimeoutChecker menjalankan goroutine pemeriksa payment expired.
func (s *PaymentService) StartTimeoutChecker() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			s.CheckExpiredPayments()
		}
	}()
	utils.InfoLogger.Println("Payment timeout checker started")
}

// CheckExpiredPayments menandai payment pending yang sudah melewati ExpiredAt
// dan membatalkan order terkait. Payment yang mendekati expiry dicek ulang ke
// gateway supaya status lokal tidak basi.
func (s *PaymentService) CheckExpiredPayments() {
	var payments []*models.Payment
	if err := s.db.Where("status = ?", PaymentStatusPending).Find(&payments).Error; err != nil {
		utils.ErrorLogger.Printf("Error checking expired payments: %v", err)
		return
	}

	now := time.Now()
	for _, payment := range payments {
		if payment.ExpiredAt == nil || payment.ExpiredAt.IsZero() {
			continue
		}

		if now.After(*payment.ExpiredAt) {
			if err := s.UpdatePaymentStatus(payment.ID, PaymentStatusExpired); err != nil {
				utils.ErrorLogger.Printf("Error expiring payment %d: %v", payment.ID, err)
				continue
			}
			utils.InfoLogger.Printf("Payment %d expired, order %d cancelled", payment.ID, payment.OrderID)
			continue
		}

		// 10 menit sebelum expired: sinkronkan dengan gateway
		if now.After(payment.ExpiredAt.Add(-10 * time.Minute)) {
			status, err := GetMidtransService().CheckTransactionStatus(payment.ReferenceID)
			if err != nil {
				utils.ErrorLogger.Printf("Error checking gateway status for payment %d: %v", payment.ID, err)
				continue
			}
			if status != payment.Status {
				if err := s.UpdatePaymentStatus(payment.ID, status); err != nil {
					utils.ErrorLogger.Printf("Error syncing payment %d from gateway: %v", payment.ID, err)
					continue
				}
				utils.InfoLogger.Printf("Payment %d status synced to %s from gateway", payment.ID, status)
			}
		}
	}
}
