package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

func setupPaymentDB(t *testing.T) (*gorm.DB, *PaymentService) {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.Customer{}, &models.Table{}, &models.Order{}, &models.Payment{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db, NewPaymentService(db)
}

func seedOrderWithPayment(t *testing.T, db *gorm.DB, paymentStatus string, expiredAt *time.Time) models.Payment {
	t.Helper()
	order := models.Order{CustomerID: 1, TableID: 1, Status: models.OrderStatusPendingPayment, TotalAmount: 50000}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	payment := models.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Status:        paymentStatus,
		PaymentMethod: "qris",
		ReferenceID:   order.ReferenceCode(),
		ExpiredAt:     expiredAt,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}
	return payment
}

func TestPaymentService_UpdatePaymentStatus_Success(t *testing.T) {
	db, svc := setupPaymentDB(t)
	payment := seedOrderWithPayment(t, db, PaymentStatusPending, nil)

	if err := svc.UpdatePaymentStatus(payment.ID, PaymentStatusSuccess); err != nil {
		t.Fatalf("UpdatePaymentStatus() error = %v", err)
	}

	var gotPayment models.Payment
	db.First(&gotPayment, payment.ID)
	if gotPayment.Status != PaymentStatusSuccess {
		t.Errorf("payment status = %s, want success", gotPayment.Status)
	}
	if gotPayment.PaymentTime == nil {
		t.Errorf("PaymentTime should be set on success")
	}

	// Order ikut berubah dalam transaksi yang sama
	var gotOrder models.Order
	db.First(&gotOrder, payment.OrderID)
	if gotOrder.Status != models.OrderStatusPaid {
		t.Errorf("order status = %s, want paid", gotOrder.Status)
	}
}

func TestPaymentService_UpdatePaymentStatus_Expired(t *testing.T) {
	db, svc := setupPaymentDB(t)
	payment := seedOrderWithPayment(t, db, PaymentStatusPending, nil)

	if err := svc.UpdatePaymentStatus(payment.ID, PaymentStatusExpired); err != nil {
		t.Fatalf("UpdatePaymentStatus() error = %v", err)
	}

	var gotOrder models.Order
	db.First(&gotOrder, payment.OrderID)
	if gotOrder.Status != models.OrderStatusCancelled {
		t.Errorf("order status = %s, want cancelled", gotOrder.Status)
	}
}

func TestPaymentService_UpdatePaymentStatus_NotFound(t *testing.T) {
	_, svc := setupPaymentDB(t)

	if err := svc.UpdatePaymentStatus(999, PaymentStatusSuccess); err == nil {
		t.Errorf("UpdatePaymentStatus() should fail for missing payment")
	}
}

func TestPaymentService_CheckExpiredPayments(t *testing.T) {
	db, svc := setupPaymentDB(t)

	past := time.Now().Add(-1 * time.Minute)
	expired := seedOrderWithPayment(t, db, PaymentStatusPending, &past)

	future := time.Now().Add(2 * time.Hour)
	stillValid := seedOrderWithPayment(t, db, PaymentStatusPending, &future)

	svc.CheckExpiredPayments()

	var got models.Payment
	db.First(&got, expired.ID)
	if got.Status != PaymentStatusExpired {
		t.Errorf("expired payment status = %s, want expired", got.Status)
	}

	var gotValid models.Payment
	db.First(&gotValid, stillValid.ID)
	if gotValid.Status != PaymentStatusPending {
		t.Errorf("valid payment status = %s, want pending", gotValid.Status)
	}
}
