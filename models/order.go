package models

import (
	"fmt"
	"time"
)

// Status order
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusInProgress     = "in_progress"
	OrderStatusReady          = "ready"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	CustomerID        uint        `gorm:"not null" json:"customer_id"`
	Customer          Customer    `gorm:"foreignKey:CustomerID" json:"customer"`
	TableID           uint        `json:"table_id"`
	Table             Table       `gorm:"foreignKey:TableID" json:"table"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	TotalAmount       float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	ChefID            *uint       `gorm:"index" json:"chef_id,omitempty"`
	Chef              *User       `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	StartCookingTime  *time.Time  `json:"start_cooking_time,omitempty"`
	FinishCookingTime *time.Time  `json:"finish_cooking_time,omitempty"`
	OrderItems        []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt         time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null" json:"updated_at"`
}

// ReferenceCode dipakai sebagai order_id di payment gateway
func (o *Order) ReferenceCode() string {
	return fmt.Sprintf("ORD-%d-%d", o.CustomerID, o.ID)
}
