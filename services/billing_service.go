package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

const (
	trialPeriod      = 14 * 24 * time.Hour
	pastDueGrace     = 7 * 24 * time.Hour
	subscriptionTerm = 30 * 24 * time.Hour
)

// BillingService menangani langganan SaaS restoran: trial, invoice bulanan
// lewat Midtrans Core API, dan penurunan status saat nunggak.
type BillingService struct {
	db   *gorm.DB
	core *coreapi.Client
}

func NewBillingService(db *gorm.DB) *BillingService {
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	client := &coreapi.Client{}
	client.New(os.Getenv("MIDTRANS_SERVER_KEY"), env)

	return &BillingService{db: db, core: client}
}

// Subscribe memulai langganan baru dengan masa trial 14 hari.
func (s *BillingService) Subscribe(userID, planID uint) (*models.Subscription, error) {
	var plan models.Plan
	if err := s.db.First(&plan, planID).Error; err != nil {
		return nil, fmt.Errorf("plan not found: %w", err)
	}

	var existing models.Subscription
	err := s.db.Where("user_id = ? AND status <> ?", userID, models.SubscriptionStatusCancelled).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("user %d already has an active subscription", userID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	sub := models.Subscription{
		UserID:           userID,
		PlanID:           planID,
		Status:           models.SubscriptionStatusTrial,
		CurrentPeriodEnd: time.Now().Add(trialPeriod),
	}
	if err := s.db.Create(&sub).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Subscription %d created for user %d (plan=%s, trial)", sub.ID, userID, plan.Code)
	return &sub, nil
}

// CreateInvoice membuat tagihan QRIS untuk satu periode langganan.
func (s *BillingService) CreateInvoice(subscriptionID uint) (*coreapi.ChargeResponse, error) {
	var sub models.Subscription
	if err := s.db.Preload("Plan").First(&sub, subscriptionID).Error; err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriptionStatusCancelled {
		return nil, fmt.Errorf("subscription %d is cancelled", subscriptionID)
	}

	referenceID := fmt.Sprintf("SUB-%d-%d", sub.ID, time.Now().Unix())

	resp, mErr := s.core.ChargeTransaction(&coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  referenceID,
			GrossAmt: int64(sub.Plan.MonthlyPrice),
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    sub.Plan.Code,
				Name:  sub.Plan.Name,
				Price: int64(sub.Plan.MonthlyPrice),
				Qty:   1,
			},
		},
	})
	if mErr != nil {
		return nil, fmt.Errorf("midtrans charge failed: %w", mErr)
	}

	sub.PaymentReference = referenceID
	if err := s.db.Save(&sub).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Invoice %s created for subscription %d", referenceID, sub.ID)
	return resp, nil
}

// HandlePaymentResult dipanggil dari webhook billing: memperpanjang periode
// saat pembayaran sukses, menandai past_due saat gagal/expired.
func (s *BillingService) HandlePaymentResult(referenceID, status string) error {
	var sub models.Subscription
	if err := s.db.Where("payment_reference = ?", referenceID).First(&sub).Error; err != nil {
		return fmt.Errorf("no subscription for reference %s: %w", referenceID, err)
	}

	switch status {
	case PaymentStatusSuccess:
		sub.Status = models.SubscriptionStatusActive
		base := sub.CurrentPeriodEnd
		if now := time.Now(); base.Before(now) {
			base = now
		}
		sub.CurrentPeriodEnd = base.Add(subscriptionTerm)
		utils.InfoLogger.Printf("Subscription %d renewed until %s", sub.ID, sub.CurrentPeriodEnd.Format("2006-01-02"))
	case PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCancelled:
		sub.Status = models.SubscriptionStatusPastDue
		utils.InfoLogger.Printf("Subscription %d marked past_due (payment %s)", sub.ID, status)
	default:
		return nil
	}

	return s.db.Save(&sub).Error
}

// Cancel menghentikan langganan; status cancelled bersifat final.
func (s *BillingService) Cancel(subscriptionID uint) error {
	var sub models.Subscription
	if err := s.db.First(&sub, subscriptionID).Error; err != nil {
		return err
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	return s.db.Save(&sub).Error
}

// StartRenewalChecker menjalankan goroutine yang menurunkan status langganan
// yang lewat jatuh tempo, bergaya sama dengan payment timeout checker.
func (s *BillingService) StartRenewalChecker() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			s.CheckDelinquent()
		}
	}()
	utils.InfoLogger.Println("Billing renewal checker started")
}

// CheckDelinquent menandai langganan yang periodenya habis sebagai past_due,
// dan membatalkan yang sudah melewati masa tenggang.
func (s *BillingService) CheckDelinquent() {
	now := time.Now()

	var subs []models.Subscription
	err := s.db.Where("status IN ?", []string{
		models.SubscriptionStatusTrial,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue,
	}).Find(&subs).Error
	if err != nil {
		utils.ErrorLogger.Printf("Error checking delinquent subscriptions: %v", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if !sub.IsDelinquent(now) {
			continue
		}

		if sub.Status == models.SubscriptionStatusPastDue {
			if now.After(sub.CurrentPeriodEnd.Add(pastDueGrace)) {
				sub.Status = models.SubscriptionStatusCancelled
				sub.CancelledAt = &now
				utils.InfoLogger.Printf("Subscription %d cancelled after grace period", sub.ID)
			}
		} else {
			sub.Status = models.SubscriptionStatusPastDue
			utils.InfoLogger.Printf("Subscription %d is past due", sub.ID)
		}

		if err := s.db.Save(sub).Error; err != nil {
			utils.ErrorLogger.Printf("Error updating subscription %d: %v", sub.ID, err)
		}
	}
}
