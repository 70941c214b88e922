package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
)

// DSN bernama per test supaya koneksi pool berbagi database yang sama
// tanpa bocor antar test.
func memoryDSN(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
}

func setupStoreDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}, &models.Reservation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGormReservationStore_CountConfirmedByTime(t *testing.T) {
	db := setupStoreDB(t)
	store := NewGormReservationStore(db)

	seed := []models.Reservation{
		{Date: "2026-09-01", Time: "19:00", PartySize: 2, GuestName: "Andi", Status: models.ReservationStatusConfirmed},
		{Date: "2026-09-01", Time: "19:00", PartySize: 4, GuestName: "Budi", Status: models.ReservationStatusConfirmed},
		{Date: "2026-09-01", Time: "19:00", PartySize: 2, GuestName: "Citra", Status: models.ReservationStatusCancelled},
		{Date: "2026-09-01", Time: "20:00", PartySize: 2, GuestName: "Dewi", Status: models.ReservationStatusConfirmed},
		{Date: "2026-09-02", Time: "19:00", PartySize: 2, GuestName: "Eka", Status: models.ReservationStatusConfirmed},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	counts, err := store.CountConfirmedByTime("2026-09-01")
	if err != nil {
		t.Fatalf("CountConfirmedByTime() error = %v", err)
	}

	byTime := make(map[string]int64)
	for _, tc := range counts {
		byTime[tc.Time] = tc.Count
	}

	// Cancelled tidak dihitung, tanggal lain tidak ikut
	if byTime["19:00"] != 2 {
		t.Errorf("19:00 count = %d, want 2", byTime["19:00"])
	}
	if byTime["20:00"] != 1 {
		t.Errorf("20:00 count = %d, want 1", byTime["20:00"])
	}
}

func TestGormReservationStore_ListAvailableTables(t *testing.T) {
	db := setupStoreDB(t)
	store := NewGormReservationStore(db)

	tables := []models.Table{
		{TableNumber: "A1", Seats: 2, Status: models.TableStatusAvailable},
		{TableNumber: "A2", Seats: 6, Status: models.TableStatusAvailable},
		{TableNumber: "A3", Seats: 4, Status: models.TableStatusOccupied},
		{TableNumber: "A4", Seats: 4, Status: models.TableStatusAvailable},
	}
	for i := range tables {
		if err := db.Create(&tables[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := store.ListAvailableTables(0)
	if err != nil {
		t.Fatalf("ListAvailableTables() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 available tables, got %d", len(got))
	}
	// Urut kursi menaik
	if got[0].Seats != 2 || got[1].Seats != 4 || got[2].Seats != 6 {
		t.Errorf("tables not sorted by seats: %d, %d, %d", got[0].Seats, got[1].Seats, got[2].Seats)
	}

	got, err = store.ListAvailableTables(4)
	if err != nil {
		t.Fatalf("ListAvailableTables(4) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 tables with seats >= 4, got %d", len(got))
	}
}

func TestGormReservationStore_ListReservedTableIDs(t *testing.T) {
	db := setupStoreDB(t)
	store := NewGormReservationStore(db)

	tableID := uint(7)
	otherID := uint(8)
	seed := []models.Reservation{
		{Date: "2026-09-01", Time: "19:00", PartySize: 2, GuestName: "Andi", TableID: &tableID, Status: models.ReservationStatusConfirmed},
		{Date: "2026-09-01", Time: "19:30", PartySize: 2, GuestName: "Budi", TableID: &otherID, Status: models.ReservationStatusConfirmed},
		{Date: "2026-09-01", Time: "19:00", PartySize: 2, GuestName: "Citra", Status: models.ReservationStatusConfirmed},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	ids, err := store.ListReservedTableIDs("2026-09-01", "19:00")
	if err != nil {
		t.Fatalf("ListReservedTableIDs() error = %v", err)
	}

	// Hanya meja di slot 19:00 persis; 19:30 adalah slot berbeda
	if len(ids) != 1 || ids[0] != tableID {
		t.Errorf("ListReservedTableIDs() = %v, want [%d]", ids, tableID)
	}
}

func TestInventoryConfig(t *testing.T) {
	db := setupStoreDB(t)

	// Tanpa meja: fallback ke default
	cfg := InventoryConfig(db)
	if cfg.SlotCapacity != DefaultAvailabilityConfig().SlotCapacity {
		t.Errorf("empty inventory SlotCapacity = %d, want default %d",
			cfg.SlotCapacity, DefaultAvailabilityConfig().SlotCapacity)
	}

	for i := 0; i < 5; i++ {
		db.Create(&models.Table{TableNumber: "T", Seats: 4, Status: models.TableStatusAvailable})
	}
	db.Create(&models.Table{TableNumber: "X", Seats: 4, Status: models.TableStatusOccupied})

	cfg = InventoryConfig(db)
	if cfg.SlotCapacity != 5 {
		t.Errorf("SlotCapacity = %d, want 5 (occupied tables excluded)", cfg.SlotCapacity)
	}
}
