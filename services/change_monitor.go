package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/kds"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

// ChangeMonitor mem-poll tabel db_changes (diisi trigger database) dan
// menyiarkan perubahan lewat websocket hub.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	// Transaction supaya batch yang sama tidak diproses dua kali
	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "orders":
			cm.processOrderChange(change)
		case "payments":
			cm.processPaymentChange(change)
		case "reservations":
			cm.processReservationChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("Error committing change batch: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		utils.InfoLogger.Printf("Processed %d database changes", len(changes))
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	var table models.Table

	if change.ActionType != "DELETE" {
		if err := cm.DB.First(&table, change.RecordID).Error; err != nil {
			utils.ErrorLogger.Printf("Error fetching table %d: %v", change.RecordID, err)
			return
		}
	}

	switch change.ActionType {
	case "INSERT":
		kds.BroadcastTableCreate(table)
	case "UPDATE":
		kds.BroadcastTableUpdate(table)
	case "DELETE":
		kds.BroadcastTableDelete(models.Table{ID: uint(change.RecordID)})
	}
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.First(&order, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order %d: %v", change.RecordID, err)
		return
	}

	kds.BroadcastOrderUpdate(order)
}

func (cm *ChangeMonitor) processPaymentChange(change models.DBChange) {
	var payment models.Payment

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.First(&payment, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching payment %d: %v", change.RecordID, err)
		return
	}

	switch change.ActionType {
	case "INSERT":
		kds.BroadcastPaymentPending(payment)
	case "UPDATE":
		if payment.Status == PaymentStatusSuccess {
			kds.BroadcastPaymentSuccess(payment)
		}
		kds.BroadcastPaymentUpdate(payment, models.Order{ID: payment.OrderID})
	}
}

func (cm *ChangeMonitor) processReservationChange(change models.DBChange) {
	var reservation models.Reservation

	if change.ActionType == "DELETE" {
		return
	}
	if err := cm.DB.Preload("Table").First(&reservation, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching reservation %d: %v", change.RecordID, err)
		return
	}

	switch change.ActionType {
	case "INSERT":
		kds.BroadcastReservationCreate(reservation)
	case "UPDATE":
		kds.BroadcastReservationUpdate(reservation)
	}
}
