package models

import "time"

// Status reservasi
const (
	ReservationStatusWaitlist  = "waitlist"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// Reservation menyimpan booking meja untuk tanggal + jam tertentu.
// Date dan Time disimpan sebagai string ("2006-01-02" / "15:04") supaya
// grouping per slot di query availability tetap sederhana.
type Reservation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Date       string    `gorm:"type:varchar(10);not null;index:idx_reservation_slot" json:"date"`
	Time       string    `gorm:"type:varchar(5);not null;index:idx_reservation_slot" json:"time"`
	PartySize  int       `gorm:"not null" json:"party_size"`
	TableID    *uint     `gorm:"index" json:"table_id,omitempty"`
	Table      *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"table,omitempty"`
	GuestName  string    `gorm:"type:varchar(100);not null" json:"guest_name"`
	GuestPhone string    `gorm:"type:varchar(30)" json:"guest_phone"`
	GuestEmail string    `gorm:"type:varchar(100)" json:"guest_email"`
	Status     string    `gorm:"type:varchar(20);not null;default:'waitlist';index:idx_reservation_slot" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// IsConfirmed -> hanya reservasi confirmed yang memegang slot
func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}

// Confirm menandai reservasi memegang booking nyata
func (r *Reservation) Confirm() {
	r.Status = ReservationStatusConfirmed
	r.UpdatedAt = time.Now()
}

// Cancel melepas slot; status cancelled bersifat final
func (r *Reservation) Cancel() {
	r.Status = ReservationStatusCancelled
	r.UpdatedAt = time.Now()
}
