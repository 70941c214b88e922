package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/services"
	"github.com/snytra/restaurant-app/utils"
)

type BillingController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewBillingController(db *gorm.DB) *BillingController {
	return &BillingController{
		DB:      db,
		Billing: services.NewBillingService(db),
	}
}

// GetPlans -> daftar paket langganan yang tersedia
func (bc *BillingController) GetPlans(c *gin.Context) {
	var plans []models.Plan
	if err := bc.DB.Order("monthly_price asc").Find(&plans).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of plans", plans)
}

// Subscribe -> user memulai langganan (trial 14 hari)
func (bc *BillingController) Subscribe(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}
	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("invalid user id type"))
		return
	}

	var req struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sub, err := bc.Billing.Subscribe(userID, req.PlanID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Subscription created", sub)
}

// GetSubscription -> langganan aktif milik user yang sedang login
func (bc *BillingController) GetSubscription(c *gin.Context) {
	userIDInterface, _ := c.Get("user_id")
	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("invalid user id type"))
		return
	}

	var sub models.Subscription
	if err := bc.DB.Preload("Plan").
		Where("user_id = ? AND status <> ?", userID, models.SubscriptionStatusCancelled).
		First(&sub).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no active subscription"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Subscription detail", sub)
}

// CreateInvoice -> membuat tagihan QRIS untuk perpanjangan langganan
func (bc *BillingController) CreateInvoice(c *gin.Context) {
	idStr := c.Param("subscription_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid subscription id"))
		return
	}

	resp, err := bc.Billing.CreateInvoice(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Invoice created", resp)
}

// HandleBillingCallback -> webhook Midtrans untuk pembayaran langganan
func (bc *BillingController) HandleBillingCallback(c *gin.Context) {
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

	midtransService := services.GetMidtransService()
	if !midtransService.ValidateSignature(request.OrderID, request.StatusCode, request.GrossAmount, request.SignatureKey) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	status := services.MapTransactionStatus(request.TransactionStatus)
	if err := bc.Billing.HandlePaymentResult(request.OrderID, status); err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Billing status updated", gin.H{
		"reference_id": request.OrderID,
		"status":       status,
	})
}

// CancelSubscription -> menghentikan langganan
func (bc *BillingController) CancelSubscription(c *gin.Context) {
	idStr := c.Param("subscription_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid subscription id"))
		return
	}

	if err := bc.Billing.Cancel(uint(id)); err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Subscription cancelled", gin.H{"subscription_id": id})
}
