package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/snytra/restaurant-app/kds"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/services"
	"github.com/snytra/restaurant-app/utils"
)

// PaymentRequest adalah struktur untuk request pembuatan pembayaran
type PaymentRequest struct {
	OrderID       uint    `json:"order_id" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash qris"`
	CashReceived  float64 `json:"cash_received"`
}

// GetPayments menampilkan daftar pembayaran
func GetPayments(c *gin.Context) {
	db := utils.GetDB()

	// Filter berdasarkan order_id jika ada
	orderID := c.Query("order_id")

	var payments []models.Payment

	if orderID != "" {
		db.Preload("Order").Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments)
	} else {
		db.Preload("Order").Order("created_at DESC").Find(&payments)
	}

	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

// GetPayment menampilkan detail pembayaran berdasarkan ID
func GetPayment(c *gin.Context) {
	db := utils.GetDB()
	id := c.Param("id")

	var payment models.Payment
	if err := db.Preload("Order").First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// CreatePayment membuat pembayaran baru (tunai atau QRIS)
func CreatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	db := utils.GetDB()

	// Ambil order dari database
	var order models.Order
	if err := db.Preload("OrderItems.Menu").Preload("Customer").First(&order, req.OrderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	if order.Status != models.OrderStatusPendingPayment {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order is not awaiting payment"))
		return
	}

	amount := order.TotalAmount
	if math.Mod(amount*100, 1) != 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount can only have up to 2 decimal places"))
		return
	}

	expiredAt := time.Now().Add(15 * time.Minute)
	payment := models.Payment{
		OrderID:       req.OrderID,
		Amount:        amount,
		Status:        services.PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
		ExpiredAt:     &expiredAt,
	}

	utils.InfoLogger.Printf("Creating payment for order #%d with method %s, amount: %.2f",
		payment.OrderID, payment.PaymentMethod, payment.Amount)

	switch req.PaymentMethod {
	case "cash":
		if req.CashReceived < amount {
			utils.RespondError(c, http.StatusBadRequest, errors.New("cash received is less than total amount"))
			return
		}
		now := time.Now()
		payment.Status = services.PaymentStatusSuccess
		payment.ReferenceID = "CSH-" + uuid.NewString()
		payment.CashReceived = req.CashReceived
		payment.Change = req.CashReceived - amount
		payment.PaymentTime = &now

	case "qris":
		referenceID := order.ReferenceCode() + "-" + uuid.NewString()[:8]

		midtransService := services.GetMidtransService()
		qrString, qrisExpiry, err := midtransService.ChargeQRIS(referenceID, amount)
		if err != nil {
			utils.ErrorLogger.Printf("Failed to create QRIS transaction: %v", err)
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		payment.ReferenceID = referenceID
		payment.QRCode = qrString
		payment.ExpiredAt = &qrisExpiry
	}

	// Save payment ke database
	if err := db.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Pembayaran tunai langsung menandai order paid
	if payment.Status == services.PaymentStatusSuccess {
		order.Status = models.OrderStatusPaid
		order.UpdatedAt = time.Now()
		db.Save(&order)
	}

	go sendPaymentEvent(payment, order)

	utils.InfoLogger.Printf("Payment %d created successfully with status: %s", payment.ID, payment.Status)

	utils.RespondJSON(c, http.StatusCreated, "Payment created successfully", gin.H{
		"payment": payment,
		"order":   order,
	})
}

// VerifyPayment memverifikasi pembayaran secara manual (admin/staff)
func VerifyPayment(c *gin.Context) {
	// Validasi role
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	db := utils.GetDB()
	id := c.Param("id")

	var payment models.Payment
	if err := db.Preload("Order").First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	if payment.Status == services.PaymentStatusSuccess {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment already verified"))
		return
	}

	now := time.Now()
	payment.PaymentTime = &now
	payment.Status = services.PaymentStatusSuccess

	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			payment.VerifiedBy = &uid
		}
	}

	if err := db.Save(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Update order status to paid
	order := payment.Order
	order.Status = models.OrderStatusPaid
	if err := db.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sendPaymentEvent(payment, order)

	utils.RespondJSON(c, http.StatusOK, "Payment verified successfully", gin.H{
		"payment": payment,
		"order":   order,
	})
}

// sendPaymentEvent menyiarkan event pembayaran ke client WebSocket
func sendPaymentEvent(payment models.Payment, order models.Order) {
	db := utils.GetDB()
	if order.ID == 0 && payment.OrderID > 0 {
		if err := db.Preload("OrderItems").Preload("OrderItems.Menu").First(&order, payment.OrderID).Error; err != nil {
			utils.ErrorLogger.Printf("Could not load order data for payment event: %v", err)
		}
	}

	switch payment.Status {
	case services.PaymentStatusSuccess:
		kds.BroadcastPaymentSuccess(payment)
		kds.BroadcastOrderUpdate(order)
		kds.BroadcastStaffNotification(fmt.Sprintf("Payment successful for Order #%d", order.ID))
	case services.PaymentStatusPending:
		kds.BroadcastPaymentPending(payment)
	default:
		kds.BroadcastPaymentUpdate(payment, order)
	}
}

// DeletePayment menghapus pembayaran
func DeletePayment(c *gin.Context) {
	idStr := c.Param("id")
	id, _ := strconv.Atoi(idStr)

	if err := utils.GetDB().Delete(&models.Payment{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment deleted", gin.H{"payment_id": id})
}

// HandlePaymentCallback menangani webhook dari Midtrans untuk pembayaran dine-in
func HandlePaymentCallback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to read request body"))
		return
	}

	var request struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
	}

	if err := json.Unmarshal(body, &request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to parse request body"))
		return
	}

	// Validasi signature sebelum menyentuh database
	midtransService := services.GetMidtransService()
	if !midtransService.ValidateSignature(request.OrderID, request.StatusCode, request.GrossAmount, request.SignatureKey) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	db := utils.GetDB()

	var payment models.Payment
	if err := db.Where("reference_id = ?", request.OrderID).First(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	// Validasi nominal
	expectedAmount := fmt.Sprintf("%.2f", payment.Amount)
	if request.GrossAmount != expectedAmount {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment amount does not match"))
		return
	}

	status := services.MapTransactionStatus(request.TransactionStatus)

	paymentService := services.NewPaymentService(db)
	if err := paymentService.UpdatePaymentStatus(payment.ID, status); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	db.Preload("Order").First(&payment, payment.ID)
	sendPaymentEvent(payment, payment.Order)

	// Notifikasi untuk staff
	notification := models.Notification{
		Title:   "Payment Status Update",
		Message: fmt.Sprintf("Payment for order %d has been %s", payment.OrderID, status),
	}
	db.Create(&notification)

	utils.RespondJSON(c, http.StatusOK, "Payment status updated successfully", gin.H{
		"payment_id": payment.ID,
		"status":     status,
	})
}

// GetMidtransConfig mengembalikan konfigurasi Midtrans yang aman untuk client
func GetMidtransConfig(c *gin.Context) {
	midtransService := services.GetMidtransService()

	utils.RespondJSON(c, http.StatusOK, "Midtrans configuration", gin.H{
		"client_key": midtransService.ClientKey(),
	})
}

// CheckPaymentStatus memeriksa status pembayaran di Midtrans dan memperbarui di database
func CheckPaymentStatus(c *gin.Context) {
	db := utils.GetDB()
	id := c.Param("payment_id")

	var payment models.Payment
	if err := db.First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	// Hanya periksa pembayaran QRIS dengan status pending
	if payment.PaymentMethod != "qris" || payment.Status != services.PaymentStatusPending {
		utils.RespondError(c, http.StatusBadRequest, errors.New("can only check pending qris payments"))
		return
	}

	if payment.ReferenceID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment reference ID is empty"))
		return
	}

	midtransService := services.GetMidtransService()
	status, err := midtransService.CheckTransactionStatus(payment.ReferenceID)
	if err != nil {
		utils.ErrorLogger.Printf("Error checking Midtrans status: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	wasUpdated := false
	if status != payment.Status {
		wasUpdated = true
		paymentService := services.NewPaymentService(db)
		if err := paymentService.UpdatePaymentStatus(payment.ID, status); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		db.Preload("Order").First(&payment, payment.ID)
		sendPaymentEvent(payment, payment.Order)
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status checked", gin.H{
		"payment_id":   payment.ID,
		"status":       status,
		"reference_id": payment.ReferenceID,
		"was_updated":  wasUpdated,
	})
}
