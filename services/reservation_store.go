package services

import (
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
)

// GormReservationStore adalah implementasi ReservationStore di atas GORM.
// Baris hasil query langsung di-scan ke tipe yang kuat, bukan map.
type GormReservationStore struct {
	db *gorm.DB
}

func NewGormReservationStore(db *gorm.DB) *GormReservationStore {
	return &GormReservationStore{db: db}
}

func (s *GormReservationStore) CountConfirmedByTime(date string) ([]TimeCount, error) {
	var rows []TimeCount
	err := s.db.Model(&models.Reservation{}).
		Select("time, COUNT(*) AS count").
		Where("date = ? AND status = ?", date, models.ReservationStatusConfirmed).
		Group("time").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormReservationStore) ListAvailableTables(minSeats int) ([]models.Table, error) {
	query := s.db.Where("status = ?", models.TableStatusAvailable)
	if minSeats > 0 {
		query = query.Where("seats >= ?", minSeats)
	}

	var tables []models.Table
	if err := query.Order("seats asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *GormReservationStore) ListReservedTableIDs(date, timeOfDay string) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Reservation{}).
		Where("date = ? AND time = ? AND status = ? AND table_id IS NOT NULL",
			date, timeOfDay, models.ReservationStatusConfirmed).
		Pluck("table_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// InventoryConfig menurunkan kapasitas slot dari jumlah meja available yang
// sebenarnya, menggantikan konstanta flat. Fallback ke default jika inventori
// kosong atau query gagal.
func InventoryConfig(db *gorm.DB) AvailabilityConfig {
	cfg := DefaultAvailabilityConfig()

	var count int64
	if err := db.Model(&models.Table{}).
		Where("status = ?", models.TableStatusAvailable).
		Count(&count).Error; err != nil || count == 0 {
		return cfg
	}

	cfg.SlotCapacity = int(count)
	return cfg
}
