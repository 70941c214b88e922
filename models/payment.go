package models

import "time"

// Payment adalah transaksi pembayaran untuk satu order dine-in.
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrderID       uint       `json:"order_id"`
	Order         Order      `gorm:"foreignKey:OrderID" json:"order"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod string     `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	ReferenceID   string     `gorm:"type:varchar(100)" json:"reference_id"`
	QRCode        string     `gorm:"type:text" json:"qr_code"`
	CashReceived  float64    `json:"cash_received"`
	Change        float64    `json:"change"`
	PaymentTime   *time.Time `json:"payment_time,omitempty"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`
	VerifiedBy    *uint      `json:"verified_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
