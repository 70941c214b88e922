package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/snytra/restaurant-app/models"
)

// ValidationError menandai input caller yang kosong/tidak valid.
// Di-handle sebagai HTTP 400, tidak pernah di-retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InfrastructureError membungkus kegagalan dari persistence layer (HTTP 500).
type InfrastructureError struct {
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("availability query failed: %v", e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// TimeCount adalah satu baris hasil agregasi reservasi per jam slot.
type TimeCount struct {
	Time  string `gorm:"column:time" json:"time"`
	Count int64  `gorm:"column:count" json:"count"`
}

// ReservationStore adalah kontrak persistence yang dibutuhkan engine.
// Semua method hanya membaca; engine tidak pernah menulis.
type ReservationStore interface {
	// CountConfirmedByTime menghitung reservasi confirmed per jam slot untuk satu tanggal.
	CountConfirmedByTime(date string) ([]TimeCount, error)
	// ListAvailableTables mengembalikan meja berstatus available; minSeats 0 = tanpa filter kapasitas.
	ListAvailableTables(minSeats int) ([]models.Table, error)
	// ListReservedTableIDs mengembalikan id meja yang sudah dipegang reservasi confirmed di (date, time).
	ListReservedTableIDs(date, timeOfDay string) ([]uint, error)
}

// Slot adalah satu jendela booking 30 menit; dihitung ulang per request, tidak disimpan.
type Slot struct {
	Time      string `json:"time"`
	Display   string `json:"display"`
	Available int    `json:"available"`
}

// AvailabilityConfig memegang parameter jam operasional dan kapasitas.
// Dibuat eksplisit supaya bisa dikonfigurasi per restoran tanpa ubah kode.
type AvailabilityConfig struct {
	OpenTime      string        // "HH:MM", inklusif
	CloseTime     string        // "HH:MM", slot terakhir berakhir sebelum jam ini
	SlotInterval  time.Duration // lebar satu slot
	SlotCapacity  int           // table-equivalent per slot
	SeatsPerTable int           // konversi party size -> jumlah meja
}

// DefaultAvailabilityConfig -> kebijakan bawaan: 18:00-22:00, kapasitas 3, 4 kursi per meja.
func DefaultAvailabilityConfig() AvailabilityConfig {
	return AvailabilityConfig{
		OpenTime:      "18:00",
		CloseTime:     "22:00",
		SlotInterval:  30 * time.Minute,
		SlotCapacity:  3,
		SeatsPerTable: 4,
	}
}

// Validate memastikan open < close dan parameter kapasitas masuk akal.
func (cfg AvailabilityConfig) Validate() error {
	open, err := parseClock(cfg.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid open time %q: %w", cfg.OpenTime, err)
	}
	closeAt, err := parseClock(cfg.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid close time %q: %w", cfg.CloseTime, err)
	}
	if !open.Before(closeAt) {
		return fmt.Errorf("open time %s must be before close time %s", cfg.OpenTime, cfg.CloseTime)
	}
	if cfg.SlotInterval <= 0 {
		return fmt.Errorf("slot interval must be positive")
	}
	if cfg.SlotCapacity < 1 {
		return fmt.Errorf("slot capacity must be at least 1")
	}
	if cfg.SeatsPerTable < 1 {
		return fmt.Errorf("seats per table must be at least 1")
	}
	return nil
}

// AvailabilityEngine menghitung slot booking dan meja yang masih bebas.
// Stateless: murni fungsi dari input + snapshot reservasi saat dipanggil.
type AvailabilityEngine struct {
	store ReservationStore
	cfg   AvailabilityConfig
}

func NewAvailabilityEngine(store ReservationStore, cfg AvailabilityConfig) (*AvailabilityEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AvailabilityEngine{store: store, cfg: cfg}, nil
}

// Config mengembalikan konfigurasi aktif engine.
func (e *AvailabilityEngine) Config() AvailabilityConfig {
	return e.cfg
}

// GetAvailableSlots menghasilkan slot per 30 menit untuk satu tanggal.
// partySize 0 berarti tidak difilter; partySize > 0 membuang slot yang
// sisa kapasitasnya kurang dari ceil(partySize/SeatsPerTable).
func (e *AvailabilityEngine) GetAvailableSlots(date string, partySize int) ([]Slot, error) {
	if date == "" {
		return nil, &ValidationError{"date is required"}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{"invalid date, expected YYYY-MM-DD"}
	}
	if partySize < 0 {
		return nil, &ValidationError{"party size must be a positive integer"}
	}

	counts, err := e.store.CountConfirmedByTime(date)
	if err != nil {
		return nil, &InfrastructureError{err}
	}
	reserved := make(map[string]int64, len(counts))
	for _, tc := range counts {
		reserved[tc.Time] = tc.Count
	}

	tablesNeeded := 0
	if partySize > 0 {
		tablesNeeded = (partySize + e.cfg.SeatsPerTable - 1) / e.cfg.SeatsPerTable
	}

	open, _ := parseClock(e.cfg.OpenTime)
	closeAt, _ := parseClock(e.cfg.CloseTime)

	slots := make([]Slot, 0, 8)
	for cur := open; cur.Before(closeAt); cur = cur.Add(e.cfg.SlotInterval) {
		hhmm := cur.Format("15:04")

		available := e.cfg.SlotCapacity - int(reserved[hhmm])
		if available < 0 {
			available = 0
		}
		if partySize > 0 && available < tablesNeeded {
			continue
		}

		slots = append(slots, Slot{
			Time:      hhmm,
			Display:   cur.Format("3:04 PM"),
			Available: available,
		})
	}
	return slots, nil
}

// GetAvailableTables mengembalikan meja yang kapasitasnya cukup dan belum
// dipegang reservasi confirmed di (date, time), urut kursi menaik (best fit).
// Catatan: ini hanya snapshot baca; eksklusivitas booking ditegakkan di
// langkah create reservation, bukan di sini.
func (e *AvailabilityEngine) GetAvailableTables(date, timeOfDay string, partySize int) ([]models.Table, error) {
	if date == "" {
		return nil, &ValidationError{"date is required"}
	}
	if timeOfDay == "" {
		return nil, &ValidationError{"time is required"}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{"invalid date, expected YYYY-MM-DD"}
	}
	if _, err := parseClock(timeOfDay); err != nil {
		return nil, &ValidationError{"invalid time, expected HH:MM"}
	}
	if partySize < 0 {
		return nil, &ValidationError{"party size must be a positive integer"}
	}

	tables, err := e.store.ListAvailableTables(partySize)
	if err != nil {
		return nil, &InfrastructureError{err}
	}

	reservedIDs, err := e.store.ListReservedTableIDs(date, timeOfDay)
	if err != nil {
		return nil, &InfrastructureError{err}
	}
	taken := make(map[uint]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		taken[id] = struct{}{}
	}

	free := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if _, ok := taken[t.ID]; ok {
			continue
		}
		free = append(free, t)
	}

	// Meja terkecil yang cukup didahulukan supaya meja besar tidak terbuang
	sort.SliceStable(free, func(i, j int) bool {
		return free[i].Seats < free[j].Seats
	})
	return free, nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
