package models

import "time"

type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TableID    *uint     `gorm:"index" json:"table_id,omitempty"`
	Table      Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	SessionKey *string   `gorm:"type:varchar(255)" json:"session_key,omitempty"`
	Status     string    `gorm:"type:varchar(20);not null;default:'inactive'" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
