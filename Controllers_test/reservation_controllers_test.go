package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/controllers"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

// setupTestDBForReservations menggunakan SQLite in-memory khusus reservasi.
// DSN bernama per test supaya koneksi pool berbagi database yang sama
// tanpa bocor antar test.
func setupTestDBForReservations(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.Table{}, &models.Reservation{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupReservationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	reservationCtrl := controllers.NewReservationController(db)
	router.GET("/reservations/available-slots", reservationCtrl.GetAvailableSlots)
	router.GET("/reservations/available-tables", reservationCtrl.GetAvailableTables)
	router.POST("/reservations", reservationCtrl.CreateReservation)
	router.GET("/reservations", reservationCtrl.GetReservations)
	router.PATCH("/reservations/:id", reservationCtrl.UpdateReservationStatus)
	router.POST("/reservations/:id/assign-table", reservationCtrl.AssignTable)
	return router
}

func postReservation(router *gin.Engine, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/reservations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAvailableSlots(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	req, err := http.NewRequest("GET", "/reservations/available-slots?date=2026-09-01", nil)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Available slots retrieved successfully", response["message"])

	// Jam operasional 18:00-22:00 per 30 menit = 8 slot
	data := response["data"].([]interface{})
	assert.Len(t, data, 8)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "18:00", first["time"])
	assert.Equal(t, "6:00 PM", first["display"])
	assert.Equal(t, float64(3), first["available"])
}

func TestGetAvailableSlots_MissingDate(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	req, _ := http.NewRequest("GET", "/reservations/available-slots", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailableSlots_FullSlotFiltered(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)

	// Penuhi slot 19:00 (kapasitas default 3)
	for i := 0; i < 3; i++ {
		db.Create(&models.Reservation{
			Date: "2026-09-01", Time: "19:00", PartySize: 2,
			GuestName: fmt.Sprintf("Guest %d", i),
			Status:    models.ReservationStatusConfirmed,
		})
	}

	router := setupReservationRouter(db)
	req, _ := http.NewRequest("GET", "/reservations/available-slots?date=2026-09-01&party_size=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	data := response["data"].([]interface{})
	assert.Len(t, data, 7)
	for _, raw := range data {
		slot := raw.(map[string]interface{})
		assert.NotEqual(t, "19:00", slot["time"])
	}
}

func TestGetAvailableTables(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)

	big := models.Table{TableNumber: "B1", Seats: 6, Status: models.TableStatusAvailable}
	small := models.Table{TableNumber: "S1", Seats: 2, Status: models.TableStatusAvailable}
	medium := models.Table{TableNumber: "M1", Seats: 4, Status: models.TableStatusAvailable}
	db.Create(&big)
	db.Create(&small)
	db.Create(&medium)

	// Meja medium sudah dipegang reservasi confirmed di slot yang sama
	db.Create(&models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 4,
		GuestName: "Taken", TableID: &medium.ID,
		Status: models.ReservationStatusConfirmed,
	})

	router := setupReservationRouter(db)
	req, _ := http.NewRequest("GET", "/reservations/available-tables?date=2026-09-01&time=19:00&party_size=4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	// Hanya meja besar yang tersisa: small terlalu kecil, medium sudah dipesan
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	table := data[0].(map[string]interface{})
	assert.Equal(t, "B1", table["table_number"])
}

func TestCreateReservation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	w := postReservation(router, map[string]interface{}{
		"guest_name": "Andi",
		"date":       "2026-09-01",
		"time":       "19:00",
		"party_size": 2,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Reservation created successfully", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.ReservationStatusConfirmed, data["status"])
}

func TestCreateReservation_InvalidInput(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	tests := []map[string]interface{}{
		// tanggal salah format
		{"guest_name": "Andi", "date": "01-09-2026", "time": "19:00", "party_size": 2},
		// jam salah format
		{"guest_name": "Andi", "date": "2026-09-01", "time": "7pm", "party_size": 2},
		// guest_name kosong
		{"date": "2026-09-01", "time": "19:00", "party_size": 2},
	}

	for _, payload := range tests {
		w := postReservation(router, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestCreateReservation_TableConflict(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	table := models.Table{TableNumber: "C1", Seats: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	first := postReservation(router, map[string]interface{}{
		"guest_name": "Andi",
		"date":       "2026-09-01",
		"time":       "19:00",
		"party_size": 2,
		"table_id":   table.ID,
	})
	assert.Equal(t, http.StatusCreated, first.Code)

	// Meja yang sama, slot yang sama: harus ditolak
	second := postReservation(router, map[string]interface{}{
		"guest_name": "Budi",
		"date":       "2026-09-01",
		"time":       "19:00",
		"party_size": 2,
		"table_id":   table.ID,
	})
	assert.Equal(t, http.StatusConflict, second.Code)

	// Slot lain boleh pakai meja yang sama
	third := postReservation(router, map[string]interface{}{
		"guest_name": "Citra",
		"date":       "2026-09-01",
		"time":       "19:30",
		"party_size": 2,
		"table_id":   table.ID,
	})
	assert.Equal(t, http.StatusCreated, third.Code)
}

func TestCreateReservation_TableTooSmall(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	table := models.Table{TableNumber: "S1", Seats: 2, Status: models.TableStatusAvailable}
	db.Create(&table)

	w := postReservation(router, map[string]interface{}{
		"guest_name": "Andi",
		"date":       "2026-09-01",
		"time":       "19:00",
		"party_size": 6,
		"table_id":   table.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservation_WaitlistWhenSlotFull(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	// Isi slot sampai kapasitas default (3)
	for i := 0; i < 3; i++ {
		w := postReservation(router, map[string]interface{}{
			"guest_name": fmt.Sprintf("Guest %d", i),
			"date":       "2026-09-01",
			"time":       "20:00",
			"party_size": 2,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	// Reservasi keempat tetap diterima tapi masuk waitlist
	w := postReservation(router, map[string]interface{}{
		"guest_name": "Overflow",
		"date":       "2026-09-01",
		"time":       "20:00",
		"party_size": 2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.ReservationStatusWaitlist, data["status"])
}

func TestAssignTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	table := models.Table{TableNumber: "A1", Seats: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	reservation := models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 4,
		GuestName: "Andi", Status: models.ReservationStatusConfirmed,
	}
	db.Create(&reservation)

	payload, _ := json.Marshal(map[string]interface{}{"table_id": table.ID})
	url := fmt.Sprintf("/reservations/%d/assign-table", reservation.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Reservation
	db.First(&got, reservation.ID)
	assert.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)
}

func TestUpdateReservationStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	reservation := models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 2,
		GuestName: "Andi", Status: models.ReservationStatusConfirmed,
	}
	db.Create(&reservation)

	payload, _ := json.Marshal(map[string]string{"status": models.ReservationStatusCancelled})
	url := fmt.Sprintf("/reservations/%d", reservation.ID)
	req, _ := http.NewRequest("PATCH", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Reservation
	db.First(&got, reservation.ID)
	assert.Equal(t, models.ReservationStatusCancelled, got.Status)

	// Status di luar daftar valid harus ditolak
	payload, _ = json.Marshal(map[string]string{"status": "arrived"})
	req, _ = http.NewRequest("PATCH", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func patchReservationStatus(router *gin.Engine, id uint, status string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"status": status})
	url := fmt.Sprintf("/reservations/%d", id)
	req, _ := http.NewRequest("PATCH", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateReservationStatus_ReconfirmTableClash(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	table := models.Table{TableNumber: "P1", Seats: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	// Reservasi batal yang masih memegang meja P1
	cancelled := models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 2,
		GuestName: "Andi", TableID: &table.ID,
		Status: models.ReservationStatusCancelled,
	}
	db.Create(&cancelled)

	// Sementara itu meja yang sama sudah dipesan tamu lain di slot itu
	db.Create(&models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 2,
		GuestName: "Budi", TableID: &table.ID,
		Status: models.ReservationStatusConfirmed,
	})

	// Mengaktifkan kembali reservasi batal harus ditolak
	w := patchReservationStatus(router, cancelled.ID, models.ReservationStatusConfirmed)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Hanya satu reservasi confirmed yang memegang meja di slot tersebut
	var confirmed int64
	db.Model(&models.Reservation{}).
		Where("table_id = ? AND date = ? AND time = ? AND status = ?",
			table.ID, "2026-09-01", "19:00", models.ReservationStatusConfirmed).
		Count(&confirmed)
	assert.Equal(t, int64(1), confirmed)
}

func TestUpdateReservationStatus_ReconfirmSlotFull(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	// Slot 20:00 sudah penuh (kapasitas default 3)
	for i := 0; i < 3; i++ {
		db.Create(&models.Reservation{
			Date: "2026-09-01", Time: "20:00", PartySize: 2,
			GuestName: fmt.Sprintf("Guest %d", i),
			Status:    models.ReservationStatusConfirmed,
		})
	}

	waitlisted := models.Reservation{
		Date: "2026-09-01", Time: "20:00", PartySize: 2,
		GuestName: "Overflow", Status: models.ReservationStatusWaitlist,
	}
	db.Create(&waitlisted)

	w := patchReservationStatus(router, waitlisted.ID, models.ReservationStatusConfirmed)
	assert.Equal(t, http.StatusConflict, w.Code)

	var got models.Reservation
	db.First(&got, waitlisted.ID)
	assert.Equal(t, models.ReservationStatusWaitlist, got.Status)
}

func TestUpdateReservationStatus_ReconfirmWhenFree(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	router := setupReservationRouter(db)

	table := models.Table{TableNumber: "P2", Seats: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	cancelled := models.Reservation{
		Date: "2026-09-01", Time: "19:00", PartySize: 2,
		GuestName: "Andi", TableID: &table.ID,
		Status: models.ReservationStatusCancelled,
	}
	db.Create(&cancelled)

	// Tidak ada yang memegang meja maupun slot: boleh confirmed lagi
	w := patchReservationStatus(router, cancelled.ID, models.ReservationStatusConfirmed)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Reservation
	db.First(&got, cancelled.ID)
	assert.Equal(t, models.ReservationStatusConfirmed, got.Status)
}
