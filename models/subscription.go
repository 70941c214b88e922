package models

import "time"

// Status langganan restoran
const (
	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
)

// Plan adalah paket berlangganan yang ditawarkan ke pemilik restoran.
type Plan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(50);unique;not null" json:"code"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	MonthlyPrice float64   `gorm:"type:decimal(10,2);not null" json:"monthly_price"`
	MaxTables    int       `gorm:"not null;default:10" json:"max_tables"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	User             User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	PlanID           uint       `gorm:"not null" json:"plan_id"`
	Plan             Plan       `gorm:"foreignKey:PlanID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"plan"`
	Status           string     `gorm:"type:varchar(20);not null;default:'trial'" json:"status"`
	CurrentPeriodEnd time.Time  `gorm:"not null" json:"current_period_end"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	PaymentReference string     `gorm:"type:varchar(100)" json:"payment_reference"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

// IsDelinquent -> true jika periode berjalan sudah lewat dan belum dibayar
func (s *Subscription) IsDelinquent(now time.Time) bool {
	return s.Status != SubscriptionStatusCancelled && now.After(s.CurrentPeriodEnd)
}
