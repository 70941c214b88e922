package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
	mu   sync.RWMutex
)

// InitDB menyimpan koneksi database untuk dipakai handler tanpa receiver
func InitDB(database *gorm.DB) {
	once.Do(func() {
		db = database
	})
}

// GetDB mengembalikan koneksi database
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}
