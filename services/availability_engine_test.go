package services

import (
	"errors"
	"testing"

	"github.com/snytra/restaurant-app/models"
)

// fakeReservationStore memungkinkan pengujian engine tanpa database.
type fakeReservationStore struct {
	counts   []TimeCount
	tables   []models.Table
	reserved []uint
	err      error
}

func (f *fakeReservationStore) CountConfirmedByTime(date string) ([]TimeCount, error) {
	return f.counts, f.err
}

func (f *fakeReservationStore) ListAvailableTables(minSeats int) ([]models.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Table
	for _, t := range f.tables {
		if minSeats > 0 && t.Seats < minSeats {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeReservationStore) ListReservedTableIDs(date, timeOfDay string) ([]uint, error) {
	return f.reserved, f.err
}

func newTestEngine(t *testing.T, store ReservationStore) *AvailabilityEngine {
	t.Helper()
	engine, err := NewAvailabilityEngine(store, DefaultAvailabilityConfig())
	if err != nil {
		t.Fatalf("NewAvailabilityEngine() error = %v", err)
	}
	return engine
}

func TestGetAvailableSlots_EmptyDay(t *testing.T) {
	engine := newTestEngine(t, &fakeReservationStore{})

	slots, err := engine.GetAvailableSlots("2026-09-01", 0)
	if err != nil {
		t.Fatalf("GetAvailableSlots() error = %v", err)
	}

	// 18:00-22:00 dengan interval 30 menit = 8 slot
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	if slots[0].Time != "18:00" || slots[7].Time != "21:30" {
		t.Errorf("slot range = %s..%s, want 18:00..21:30", slots[0].Time, slots[7].Time)
	}
	if slots[0].Display != "6:00 PM" {
		t.Errorf("slot display = %q, want %q", slots[0].Display, "6:00 PM")
	}
	for _, s := range slots {
		if s.Available != 3 {
			t.Errorf("slot %s available = %d, want 3", s.Time, s.Available)
		}
	}
}

func TestGetAvailableSlots_ReservedCounts(t *testing.T) {
	store := &fakeReservationStore{
		counts: []TimeCount{
			{Time: "18:00", Count: 1},
			{Time: "19:00", Count: 3},
			{Time: "20:00", Count: 5}, // overbooked lewat jalur lain
		},
	}
	engine := newTestEngine(t, store)

	slots, err := engine.GetAvailableSlots("2026-09-01", 0)
	if err != nil {
		t.Fatalf("GetAvailableSlots() error = %v", err)
	}

	byTime := make(map[string]int)
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}

	if byTime["18:00"] != 2 {
		t.Errorf("18:00 available = %d, want 2", byTime["18:00"])
	}
	if byTime["19:00"] != 0 {
		t.Errorf("19:00 available = %d, want 0", byTime["19:00"])
	}
	// Available tidak boleh negatif walaupun count melebihi kapasitas
	if byTime["20:00"] != 0 {
		t.Errorf("20:00 available = %d, want 0", byTime["20:00"])
	}
}

func TestGetAvailableSlots_PartySizeFilter(t *testing.T) {
	store := &fakeReservationStore{
		counts: []TimeCount{
			{Time: "18:00", Count: 2}, // sisa 1 meja
		},
	}
	engine := newTestEngine(t, store)

	// Party 5 orang butuh ceil(5/4) = 2 meja; 18:00 hanya punya 1
	slots, err := engine.GetAvailableSlots("2026-09-01", 5)
	if err != nil {
		t.Fatalf("GetAvailableSlots() error = %v", err)
	}

	for _, s := range slots {
		if s.Time == "18:00" {
			t.Errorf("slot 18:00 should be filtered out for party of 5")
		}
	}
	if len(slots) != 7 {
		t.Errorf("expected 7 slots after filtering, got %d", len(slots))
	}

	// Party 4 orang cuma butuh 1 meja, 18:00 tetap muncul
	slots, err = engine.GetAvailableSlots("2026-09-01", 4)
	if err != nil {
		t.Fatalf("GetAvailableSlots() error = %v", err)
	}
	if len(slots) != 8 {
		t.Errorf("expected 8 slots for party of 4, got %d", len(slots))
	}
}

func TestGetAvailableSlots_Validation(t *testing.T) {
	engine := newTestEngine(t, &fakeReservationStore{})

	tests := []struct {
		name      string
		date      string
		partySize int
	}{
		{"empty date", "", 2},
		{"malformed date", "01-09-2026", 2},
		{"negative party size", "2026-09-01", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.GetAvailableSlots(tt.date, tt.partySize)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("GetAvailableSlots() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestGetAvailableSlots_StoreError(t *testing.T) {
	dbErr := errors.New("connection refused")
	engine := newTestEngine(t, &fakeReservationStore{err: dbErr})

	_, err := engine.GetAvailableSlots("2026-09-01", 2)
	var infraErr *InfrastructureError
	if !errors.As(err, &infraErr) {
		t.Fatalf("GetAvailableSlots() error = %v, want InfrastructureError", err)
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("InfrastructureError should wrap the store error")
	}
}

func TestGetAvailableTables_BestFit(t *testing.T) {
	store := &fakeReservationStore{
		tables: []models.Table{
			{ID: 1, TableNumber: "A1", Seats: 6, Status: models.TableStatusAvailable},
			{ID: 2, TableNumber: "A2", Seats: 2, Status: models.TableStatusAvailable},
			{ID: 3, TableNumber: "A3", Seats: 4, Status: models.TableStatusAvailable},
		},
	}
	engine := newTestEngine(t, store)

	tables, err := engine.GetAvailableTables("2026-09-01", "19:00", 0)
	if err != nil {
		t.Fatalf("GetAvailableTables() error = %v", err)
	}

	if len(tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(tables))
	}
	// Meja terkecil dulu
	if tables[0].Seats != 2 || tables[1].Seats != 4 || tables[2].Seats != 6 {
		t.Errorf("tables not sorted by seats ascending: %d, %d, %d",
			tables[0].Seats, tables[1].Seats, tables[2].Seats)
	}
}

func TestGetAvailableTables_PartySizeAndReserved(t *testing.T) {
	store := &fakeReservationStore{
		tables: []models.Table{
			{ID: 1, TableNumber: "A1", Seats: 6, Status: models.TableStatusAvailable},
			{ID: 2, TableNumber: "A2", Seats: 2, Status: models.TableStatusAvailable},
			{ID: 3, TableNumber: "A3", Seats: 4, Status: models.TableStatusAvailable},
		},
		reserved: []uint{3},
	}
	engine := newTestEngine(t, store)

	tables, err := engine.GetAvailableTables("2026-09-01", "19:00", 4)
	if err != nil {
		t.Fatalf("GetAvailableTables() error = %v", err)
	}

	// Meja 2 terlalu kecil, meja 3 sudah dipegang reservasi lain
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].ID != 1 {
		t.Errorf("expected table 1, got %d", tables[0].ID)
	}
}

func TestGetAvailableTables_Validation(t *testing.T) {
	engine := newTestEngine(t, &fakeReservationStore{})

	tests := []struct {
		name      string
		date      string
		timeOfDay string
	}{
		{"empty date", "", "19:00"},
		{"empty time", "2026-09-01", ""},
		{"malformed time", "2026-09-01", "7pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.GetAvailableTables(tt.date, tt.timeOfDay, 2)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("GetAvailableTables() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestAvailabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AvailabilityConfig)
		wantErr bool
	}{
		{"default config", func(cfg *AvailabilityConfig) {}, false},
		{"open after close", func(cfg *AvailabilityConfig) { cfg.OpenTime = "23:00" }, true},
		{"bad open time", func(cfg *AvailabilityConfig) { cfg.OpenTime = "6pm" }, true},
		{"zero interval", func(cfg *AvailabilityConfig) { cfg.SlotInterval = 0 }, true},
		{"zero capacity", func(cfg *AvailabilityConfig) { cfg.SlotCapacity = 0 }, true},
		{"zero seats per table", func(cfg *AvailabilityConfig) { cfg.SeatsPerTable = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAvailabilityConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
