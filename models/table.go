package models

import "time"

// Status meja
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusDirty     = "dirty"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Seats       int       `gorm:"not null;default:4" json:"seats"`
	IsSmoking   bool      `gorm:"not null;default:false" json:"is_smoking"`
	Status      string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	QRCodeURL   string    `gorm:"type:varchar(255)" json:"qr_code_url"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// CanSeat -> true jika kapasitas meja cukup untuk rombongan
func (t *Table) CanSeat(partySize int) bool {
	return t.Seats >= partySize
}
