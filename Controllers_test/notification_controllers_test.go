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

func setupTestDBForNotifications(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupNotificationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	notifCtrl := controllers.NewNotificationController(db)
	router.GET("/notifications", notifCtrl.GetAllNotifications)
	router.POST("/notifications", notifCtrl.CreateNotification)
	return router
}

func TestCreateNotification_Broadcast(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNotifications(t)
	router := setupNotificationRouter(db)

	// Tanpa user_id: notifikasi umum, ikut disiarkan ke client realtime
	payload, _ := json.Marshal(map[string]interface{}{
		"title":   "Shift malam",
		"message": "Meja 7 butuh dibersihkan",
	})
	req, _ := http.NewRequest("POST", "/notifications", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var saved models.Notification
	db.First(&saved)
	assert.Equal(t, "Meja 7 butuh dibersihkan", saved.Message)
	assert.Nil(t, saved.UserID)
}

func TestCreateNotification_MissingMessage(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNotifications(t)
	router := setupNotificationRouter(db)

	payload, _ := json.Marshal(map[string]interface{}{"title": "Tanpa isi"})
	req, _ := http.NewRequest("POST", "/notifications", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllNotifications_FilterByUser(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNotifications(t)
	router := setupNotificationRouter(db)

	userA := uint(1)
	userB := uint(2)
	db.Create(&models.Notification{Message: "Untuk A", UserID: &userA})
	db.Create(&models.Notification{Message: "Untuk B", UserID: &userB})
	db.Create(&models.Notification{Message: "Untuk semua"})

	// Inbox user A: notifikasi miliknya plus yang umum
	req, _ := http.NewRequest("GET", "/notifications?user_id=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["data"], 2)

	// Tanpa filter: semuanya
	req, _ = http.NewRequest("GET", "/notifications", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["data"], 3)
}
