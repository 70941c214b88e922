package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snytra/restaurant-app/kds"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/services"
	"github.com/snytra/restaurant-app/utils"
)

type ReservationController struct {
	DB     *gorm.DB
	Engine *services.AvailabilityEngine
}

// NewReservationController -> membuat controller reservasi beserta engine
// ketersediaannya. Kalau AVAILABILITY_FROM_INVENTORY=true, kapasitas slot
// dihitung dari jumlah meja available di database.
func NewReservationController(db *gorm.DB) *ReservationController {
	store := services.NewGormReservationStore(db)

	cfg := services.DefaultAvailabilityConfig()
	if os.Getenv("AVAILABILITY_FROM_INVENTORY") == "true" {
		cfg = services.InventoryConfig(db)
	}

	engine, err := services.NewAvailabilityEngine(store, cfg)
	if err != nil {
		// Config dari env tidak valid, pakai default yang sudah pasti benar
		engine, _ = services.NewAvailabilityEngine(store, services.DefaultAvailabilityConfig())
	}

	return &ReservationController{DB: db, Engine: engine}
}

type createReservationInput struct {
	GuestName  string `json:"guest_name" binding:"required"`
	GuestPhone string `json:"guest_phone"`
	GuestEmail string `json:"guest_email"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	PartySize  int    `json:"party_size" binding:"required"`
	TableID    *uint  `json:"table_id"`
	Notes      string `json:"notes"`
}

// respondEngineError -> memetakan error engine ke status HTTP yang sesuai.
func respondEngineError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		utils.RespondError(c, http.StatusBadRequest, vErr)
		return
	}
	utils.RespondError(c, http.StatusInternalServerError, err)
}

// GetAvailableSlots -> GET /reservations/available-slots?date=YYYY-MM-DD&party_size=N
// Mengembalikan semua slot jam operasional beserta sisa kapasitasnya.
func (rc *ReservationController) GetAvailableSlots(c *gin.Context) {
	date := c.Query("date")
	partySize := 0

	if raw := c.Query("party_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("party_size must be a number"))
			return
		}
		partySize = parsed
	}

	slots, err := rc.Engine.GetAvailableSlots(date, partySize)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available slots retrieved successfully", slots)
}

// GetAvailableTables -> GET /reservations/available-tables?date=&time=&party_size=
// Daftar meja yang muat dan belum dipesan pada slot tersebut, urut best-fit.
func (rc *ReservationController) GetAvailableTables(c *gin.Context) {
	date := c.Query("date")
	timeOfDay := c.Query("time")
	partySize := 0

	if raw := c.Query("party_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("party_size must be a number"))
			return
		}
		partySize = parsed
	}

	tables, err := rc.Engine.GetAvailableTables(date, timeOfDay, partySize)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available tables retrieved successfully", tables)
}

// CreateReservation -> membuat reservasi baru. Pengecekan eksklusivitas meja
// diulang di dalam transaksi supaya dua request bersamaan tidak bisa
// memegang meja yang sama di slot yang sama.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var input createReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be in YYYY-MM-DD format"))
		return
	}
	if _, err := time.Parse("15:04", input.Time); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("time must be in HH:MM format"))
		return
	}
	if input.PartySize < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("party_size must be at least 1"))
		return
	}

	reservation := models.Reservation{
		GuestName:  input.GuestName,
		GuestPhone: input.GuestPhone,
		GuestEmail: input.GuestEmail,
		Date:       input.Date,
		Time:       input.Time,
		PartySize:  input.PartySize,
		TableID:    input.TableID,
		Notes:      input.Notes,
		Status:     models.ReservationStatusConfirmed,
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		// Cek kapasitas slot masih tersisa
		var confirmed int64
		if err := tx.Model(&models.Reservation{}).
			Where("date = ? AND time = ? AND status = ?", input.Date, input.Time, models.ReservationStatusConfirmed).
			Count(&confirmed).Error; err != nil {
			return err
		}

		if int(confirmed) >= rc.Engine.Config().SlotCapacity {
			reservation.Status = models.ReservationStatusWaitlist
		}

		// Kalau meja spesifik diminta, kunci baris mejanya lalu pastikan
		// belum dipegang reservasi lain
		if input.TableID != nil {
			var table models.Table
			if err := lockTableRow(tx).First(&table, *input.TableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &services.ValidationError{Message: "table not found"}
				}
				return err
			}

			if !table.CanSeat(input.PartySize) {
				return &services.ValidationError{Message: fmt.Sprintf("table %s cannot seat %d guests", table.TableNumber, input.PartySize)}
			}

			var clash int64
			if err := tx.Model(&models.Reservation{}).
				Where("table_id = ? AND date = ? AND time = ? AND status = ?",
					*input.TableID, input.Date, input.Time, models.ReservationStatusConfirmed).
				Count(&clash).Error; err != nil {
				return err
			}
			if clash > 0 {
				return errTableAlreadyReserved
			}
		}

		return tx.Create(&reservation).Error
	})

	if err != nil {
		if errors.Is(err, errTableAlreadyReserved) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			utils.RespondError(c, http.StatusBadRequest, vErr)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastReservationCreate(reservation)

	utils.InfoLogger.Printf("New reservation #%d for %s %s (party of %d, status=%s)",
		reservation.ID, reservation.Date, reservation.Time, reservation.PartySize, reservation.Status)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

var (
	errTableAlreadyReserved = errors.New("table is already reserved for this slot")
	errSlotFull             = errors.New("slot is fully booked")
)

// lockTableRow menahan baris meja sampai transaksi selesai sehingga dua
// booking bersamaan untuk meja yang sama berjalan berurutan, bukan sama-sama
// membaca clash = 0. SQLite tidak mengenal FOR UPDATE dan memang
// single-writer, jadi dilewati.
func lockTableRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetReservations -> daftar reservasi, bisa difilter ?date= dan ?status=.
func (rc *ReservationController) GetReservations(c *gin.Context) {
	var reservations []models.Reservation
	query := rc.DB.Preload("Table")

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("date asc, time asc").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservations retrieved successfully", reservations)
}

// GetReservation -> detail satu reservasi.
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id := c.Param("id")

	var reservation models.Reservation
	if err := rc.DB.Preload("Table").First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation retrieved successfully", reservation)
}

type updateReservationStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReservationStatus -> transisi status confirmed/cancelled/waitlist.
// Naik kembali ke confirmed melewati pengecekan kapasitas slot dan
// eksklusivitas meja yang sama dengan CreateReservation.
func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id := c.Param("id")

	var input updateReservationStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch input.Status {
	case models.ReservationStatusConfirmed, models.ReservationStatusCancelled, models.ReservationStatusWaitlist:
	default:
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid status: %s", input.Status))
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	reconfirming := input.Status == models.ReservationStatusConfirmed &&
		reservation.Status != models.ReservationStatusConfirmed

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if reconfirming {
			var confirmed int64
			if err := tx.Model(&models.Reservation{}).
				Where("date = ? AND time = ? AND status = ? AND id != ?",
					reservation.Date, reservation.Time, models.ReservationStatusConfirmed, reservation.ID).
				Count(&confirmed).Error; err != nil {
				return err
			}
			if int(confirmed) >= rc.Engine.Config().SlotCapacity {
				return errSlotFull
			}

			if reservation.TableID != nil {
				var table models.Table
				if err := lockTableRow(tx).First(&table, *reservation.TableID).Error; err != nil {
					return err
				}

				var clash int64
				if err := tx.Model(&models.Reservation{}).
					Where("table_id = ? AND date = ? AND time = ? AND status = ? AND id != ?",
						*reservation.TableID, reservation.Date, reservation.Time,
						models.ReservationStatusConfirmed, reservation.ID).
					Count(&clash).Error; err != nil {
					return err
				}
				if clash > 0 {
					return errTableAlreadyReserved
				}
			}
		}

		reservation.Status = input.Status
		return tx.Save(&reservation).Error
	})

	if err != nil {
		if errors.Is(err, errTableAlreadyReserved) || errors.Is(err, errSlotFull) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastReservationUpdate(reservation)

	utils.InfoLogger.Printf("Reservation %d status changed to %s", reservation.ID, reservation.Status)
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated successfully", reservation)
}

type assignTableInput struct {
	TableID uint `json:"table_id" binding:"required"`
}

// AssignTable -> menetapkan meja untuk reservasi yang belum punya meja.
// Validasi kapasitas dan eksklusivitas slot dilakukan dalam transaksi.
func (rc *ReservationController) AssignTable(c *gin.Context) {
	id := c.Param("id")

	var input assignTableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := lockTableRow(tx).First(&table, input.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &services.ValidationError{Message: "table not found"}
			}
			return err
		}

		if !table.CanSeat(reservation.PartySize) {
			return &services.ValidationError{Message: fmt.Sprintf("table %s cannot seat %d guests", table.TableNumber, reservation.PartySize)}
		}

		var clash int64
		if err := tx.Model(&models.Reservation{}).
			Where("table_id = ? AND date = ? AND time = ? AND status = ? AND id != ?",
				input.TableID, reservation.Date, reservation.Time, models.ReservationStatusConfirmed, reservation.ID).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return errTableAlreadyReserved
		}

		reservation.TableID = &input.TableID
		return tx.Save(&reservation).Error
	})

	if err != nil {
		if errors.Is(err, errTableAlreadyReserved) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			utils.RespondError(c, http.StatusBadRequest, vErr)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastReservationUpdate(reservation)

	utils.RespondJSON(c, http.StatusOK, "Table assigned successfully", reservation)
}

// DeleteReservation -> hapus reservasi (admin).
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id := c.Param("id")

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := rc.DB.Delete(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation deleted successfully", nil)
}
