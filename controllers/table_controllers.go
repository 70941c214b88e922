package controllers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/kds"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// buildQRCodeURL -> URL menu untuk QR di meja; kode unik per meja
func buildQRCodeURL(code string) string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/menu?table_code=%s", base, code)
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Seats       int    `json:"seats"`
		IsSmoking   bool   `json:"is_smoking"`
		Status      string `json:"status"` // optional, default "available"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Seats:       4,
		IsSmoking:   req.IsSmoking,
		Status:      models.TableStatusAvailable,
		QRCodeURL:   buildQRCodeURL(uuid.NewString()),
	}
	if req.Seats > 0 {
		table.Seats = req.Seats
	}
	if req.Status != "" {
		table.Status = req.Status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Broadcast dengan data lengkap
	stats := tc.getDashboardStats()
	kds.BroadcastMessage(kds.Message{
		Event: kds.EventTableCreate,
		Data: map[string]interface{}{
			"table": table,
			"stats": stats,
		},
	})

	utils.InfoLogger.Printf("New table created: %s (seats=%d, status=%s)", table.TableNumber, table.Seats, table.Status)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// UpdateTable -> update atribut meja (seats, smoking, nomor)
func (tc *TableController) UpdateTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var body struct {
		TableNumber *string `json:"table_number"`
		Seats       *int    `json:"seats"`
		IsSmoking   *bool   `json:"is_smoking"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.TableNumber != nil {
		table.TableNumber = *body.TableNumber
	}
	if body.Seats != nil {
		if *body.Seats < 1 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("seats must be at least 1"))
			return
		}
		table.Seats = *body.Seats
	}
	if body.IsSmoking != nil {
		table.IsSmoking = *body.IsSmoking
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// UpdateTableStatus -> update status meja
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	tableID := c.Param("table_id")
	var body struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table.Status = body.Status
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Broadcast dengan data lengkap
	stats := tc.getDashboardStats()
	kds.BroadcastMessage(kds.Message{
		Event: kds.EventTableUpdate,
		Data: map[string]interface{}{
			"table": table,
			"stats": stats,
		},
	})

	utils.InfoLogger.Printf("Table %d status changed to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> menghapus meja
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table

	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Broadcast dengan data lengkap
	stats := tc.getDashboardStats()
	kds.BroadcastMessage(kds.Message{
		Event: kds.EventTableDelete,
		Data: map[string]interface{}{
			"table_id": table.ID,
			"stats":    stats,
		},
	})

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}

// GetTableByID -> detail satu meja (opsional)
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// Extra: FindTablesByStatus -> mis. list meja available
func (tc *TableController) FindTablesByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.TableStatusAvailable
	}
	var tables []models.Table
	if err := tc.DB.Where("status = ?", status).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables with status: "+status, tables)
}

// MarkTableClean untuk Cleaner menandai meja siap digunakan
func (tc *TableController) MarkTableClean(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "cleaner" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Status != models.TableStatusDirty {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("table is not dirty"))
		return
	}

	table.Status = models.TableStatusAvailable
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

// getDashboardStats menghitung statistik dashboard
func (tc *TableController) getDashboardStats() map[string]interface{} {
	var availableCount, occupiedCount, dirtyCount int64

	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusAvailable).Count(&availableCount)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusOccupied).Count(&occupiedCount)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusDirty).Count(&dirtyCount)

	return map[string]interface{}{
		"available": availableCount,
		"occupied":  occupiedCount,
		"dirty":     dirtyCount,
		"total":     availableCount + occupiedCount + dirtyCount,
	}
}
