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

func setupTestDBForUsers(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupUserRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)
	return router
}

func TestRegisterAndLogin(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	// Register
	payload, _ := json.Marshal(map[string]string{
		"name":     "Admin Satu",
		"email":    "admin@snytra.test",
		"password": "rahasia123",
		"role":     models.RoleAdmin,
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Password di database harus sudah di-hash
	var user models.User
	db.Where("email = ?", "admin@snytra.test").First(&user)
	assert.NotEqual(t, "rahasia123", user.Password)

	// Login dengan kredensial yang benar
	payload, _ = json.Marshal(map[string]string{
		"email":    "admin@snytra.test",
		"password": "rahasia123",
	})
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Login successful", response["message"])

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "admin", data["user_role"])

	// Token harus bisa diparse balik dengan claims yang sama
	claims, err := utils.ParseToken(data["token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	payload, _ := json.Marshal(map[string]string{
		"name":     "Staff Satu",
		"email":    "staff@snytra.test",
		"password": "benar123",
		"role":     models.RoleStaff,
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	payload, _ = json.Marshal(map[string]string{
		"email":    "staff@snytra.test",
		"password": "salah456",
	})
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	payload, _ := json.Marshal(map[string]string{
		"email":    "ghost@snytra.test",
		"password": "apapun",
	})
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
