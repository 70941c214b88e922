package controllers

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/kds"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no role found"))
		return
	}

	role, ok := roleInterface.(string)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid role format"))
		return
	}

	if role != "admin" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized access"))
		return
	}

	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalOrders    int64   `json:"total_orders"`
		TodayOrders    int64   `json:"today_orders"`
		TotalRevenue   float64 `json:"total_revenue"`
		TodayRevenue   float64 `json:"today_revenue"`
		AvgCookingTime float64 `json:"avg_cooking_time"`
		OrderStats     struct {
			PendingPayment int64 `json:"pending_payment"`
			Paid           int64 `json:"paid"`
			InProgress     int64 `json:"in_progress"`
			Ready          int64 `json:"ready"`
			Completed      int64 `json:"completed"`
		} `json:"order_stats"`
		PaymentStats struct {
			Pending int64   `json:"pending"`
			Success int64   `json:"success"`
			Total   float64 `json:"total"`
			Today   float64 `json:"today"`
		} `json:"payment_stats"`
		TableStats struct {
			Available int64 `json:"available"`
			Occupied  int64 `json:"occupied"`
			Dirty     int64 `json:"dirty"`
		} `json:"table_stats"`
		ReservationStats struct {
			TodayConfirmed int64 `json:"today_confirmed"`
			TodayWaitlist  int64 `json:"today_waitlist"`
			TotalUpcoming  int64 `json:"total_upcoming"`
		} `json:"reservation_stats"`
	}

	// Query total dan today orders
	ac.DB.Model(&models.Order{}).Count(&stats.TotalOrders)
	ac.DB.Model(&models.Order{}).Where("DATE(created_at) = ?", today).Count(&stats.TodayOrders)

	// Query order status counts
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPendingPayment).Count(&stats.OrderStats.PendingPayment)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPaid).Count(&stats.OrderStats.Paid)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusInProgress).Count(&stats.OrderStats.InProgress)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusReady).Count(&stats.OrderStats.Ready)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&stats.OrderStats.Completed)

	// Query payment stats
	ac.DB.Model(&models.Payment{}).Where("status = ?", "pending").Count(&stats.PaymentStats.Pending)
	ac.DB.Model(&models.Payment{}).Where("status = ?", "success").Count(&stats.PaymentStats.Success)

	// Total revenue (all time)
	ac.DB.Model(&models.Payment{}).Where("status = ?", "success").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.PaymentStats.Total)

	// Today's revenue
	ac.DB.Model(&models.Payment{}).
		Where("status = ? AND DATE(created_at) = ?", "success", today).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.PaymentStats.Today)

	// Table stats
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusAvailable).Count(&stats.TableStats.Available)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusOccupied).Count(&stats.TableStats.Occupied)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusDirty).Count(&stats.TableStats.Dirty)

	// Reservation stats
	ac.DB.Model(&models.Reservation{}).
		Where("date = ? AND status = ?", today, models.ReservationStatusConfirmed).
		Count(&stats.ReservationStats.TodayConfirmed)
	ac.DB.Model(&models.Reservation{}).
		Where("date = ? AND status = ?", today, models.ReservationStatusWaitlist).
		Count(&stats.ReservationStats.TodayWaitlist)
	ac.DB.Model(&models.Reservation{}).
		Where("date >= ? AND status = ?", today, models.ReservationStatusConfirmed).
		Count(&stats.ReservationStats.TotalUpcoming)

	stats.TotalRevenue = stats.PaymentStats.Total
	stats.TodayRevenue = stats.PaymentStats.Today

	// Calculate average cooking time (in minutes)
	var avgCookingTime sql.NullFloat64
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND start_cooking_time IS NOT NULL AND finish_cooking_time IS NOT NULL", models.OrderStatusCompleted).
		Select("AVG(TIMESTAMPDIFF(MINUTE, start_cooking_time, finish_cooking_time))").
		Row().Scan(&avgCookingTime)

	if avgCookingTime.Valid {
		stats.AvgCookingTime = avgCookingTime.Float64
	}

	// Broadcast stats update
	kds.BroadcastMessage(kds.Message{
		Event: kds.EventDashboardUpdate,
		Data:  stats,
	})

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// MonitorOrderFlow memantau alur order secara real-time
func (ac *AdminController) MonitorOrderFlow(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var orderFlow struct {
		PendingOrders []models.Order   `json:"pending_orders"`
		ActiveOrders  []models.Order   `json:"active_orders"`
		Payments      []models.Payment `json:"pending_payments"`
	}

	// Get pending orders with items
	ac.DB.Preload("OrderItems").Preload("OrderItems.Menu").
		Where("status = ?", models.OrderStatusPendingPayment).
		Find(&orderFlow.PendingOrders)

	// Get active orders (paid, in_progress, ready)
	ac.DB.Preload("OrderItems").Preload("OrderItems.Menu").
		Where("status IN ?", []string{models.OrderStatusPaid, models.OrderStatusInProgress, models.OrderStatusReady}).
		Find(&orderFlow.ActiveOrders)

	// Get pending payments
	ac.DB.Preload("Order").
		Where("status = ?", "pending").
		Find(&orderFlow.Payments)

	utils.RespondJSON(c, http.StatusOK, "Order flow status", gin.H{
		"data": gin.H{
			"order_flow": orderFlow,
		},
	})
}

// GetSalesReport mengambil laporan penjualan
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	var sales struct {
		TotalSales     float64 `json:"total_sales"`
		TotalOrders    int64   `json:"total_orders"`
		AverageOrder   float64 `json:"average_order"`
		TopSellingMenu []struct {
			MenuID   uint    `json:"menu_id"`
			Name     string  `json:"name"`
			Quantity int     `json:"quantity"`
			Revenue  float64 `json:"revenue"`
		} `json:"top_selling_menu"`
	}

	// Query data penjualan
	ac.DB.Model(&models.Payment{}).Where("status = ?", "success").Select("COALESCE(SUM(amount), 0)").Row().Scan(&sales.TotalSales)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&sales.TotalOrders)

	if sales.TotalOrders > 0 {
		sales.AverageOrder = sales.TotalSales / float64(sales.TotalOrders)
	}

	ac.DB.Raw(`
		SELECT m.id as menu_id, m.name as name,
		SUM(oi.quantity) as quantity, SUM(oi.price * oi.quantity) as revenue
		FROM order_items oi
		JOIN menus m ON oi.menu_id = m.id
		GROUP BY m.id, m.name
		ORDER BY quantity DESC
		LIMIT 5
	`).Scan(&sales.TopSellingMenu)

	utils.RespondJSON(c, http.StatusOK, "Sales report", gin.H{
		"data": gin.H{
			"sales": sales,
		},
	})
}

// GetOrderFlow -> 10 order terakhir beserta ringkas itemnya
func (ac *AdminController) GetOrderFlow(c *gin.Context) {
	var orders []models.Order
	if err := ac.DB.Preload("OrderItems.Menu").
		Order("created_at DESC").
		Limit(10).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type orderItemSummary struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}

	type orderSummary struct {
		OrderID     uint               `json:"order_id"`
		TableID     uint               `json:"table_id"`
		TotalAmount float64            `json:"total"`
		Status      string             `json:"status"`
		CreatedAt   time.Time          `json:"created_at"`
		Items       []orderItemSummary `json:"items"`
	}

	var recentOrders []orderSummary
	for _, order := range orders {
		var items []orderItemSummary
		for _, item := range order.OrderItems {
			items = append(items, orderItemSummary{
				Name:     item.Menu.Name,
				Quantity: item.Quantity,
			})
		}

		recentOrders = append(recentOrders, orderSummary{
			OrderID:     order.ID,
			TableID:     order.TableID,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
			Items:       items,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Recent orders retrieved successfully", gin.H{
		"data": gin.H{
			"recent_orders": recentOrders,
		},
	})
}

// GetOrderStats -> jumlah order per hari untuk 7 hari terakhir
func (ac *AdminController) GetOrderStats(c *gin.Context) {
	type dailyStat struct {
		Date    string  `json:"date"`
		Count   int64   `json:"count"`
		Revenue float64 `json:"revenue"`
	}

	var dailyStats []dailyStat
	ac.DB.Raw(`
		SELECT DATE(created_at) as date, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as revenue
		FROM orders
		WHERE created_at >= DATE_SUB(CURDATE(), INTERVAL 7 DAY)
		GROUP BY DATE(created_at)
		ORDER BY date ASC
	`).Scan(&dailyStats)

	utils.RespondJSON(c, http.StatusOK, "Order stats retrieved successfully", gin.H{
		"daily": dailyStats,
	})
}

// GetAnalytics -> ringkasan revenue per hari + reservasi per slot (untuk chart dashboard)
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	var analytics struct {
		DailyRevenue []struct {
			Date    string  `json:"date"`
			Revenue float64 `json:"revenue"`
		} `json:"daily_revenue"`
		ReservationsPerSlot []struct {
			Time  string `json:"time"`
			Count int64  `json:"count"`
		} `json:"reservations_per_slot"`
	}

	ac.DB.Raw(`
		SELECT DATE(created_at) as date, COALESCE(SUM(amount), 0) as revenue
		FROM payments
		WHERE status = 'success' AND created_at >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)
		GROUP BY DATE(created_at)
		ORDER BY date ASC
	`).Scan(&analytics.DailyRevenue)

	ac.DB.Raw(`
		SELECT time, COUNT(*) as count
		FROM reservations
		WHERE status = 'confirmed'
		GROUP BY time
		ORDER BY time ASC
	`).Scan(&analytics.ReservationsPerSlot)

	utils.RespondJSON(c, http.StatusOK, "Analytics retrieved successfully", analytics)
}

// ExportData -> export laporan order sebagai CSV
func (ac *AdminController) ExportData(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var orders []models.Order
	query := ac.DB.Preload("OrderItems")
	if from := c.Query("from"); from != "" {
		query = query.Where("DATE(created_at) >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("DATE(created_at) <= ?", to)
	}
	if err := query.Order("created_at asc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{"order_id", "table_id", "status", "total_amount", "items", "created_at"})

	for _, order := range orders {
		writer.Write([]string{
			fmt.Sprintf("%d", order.ID),
			fmt.Sprintf("%d", order.TableID),
			order.Status,
			fmt.Sprintf("%.2f", order.TotalAmount),
			fmt.Sprintf("%d", len(order.OrderItems)),
			order.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()

	if err := writer.Error(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportPDF -> laporan penjualan PDF dengan chart revenue harian
func (ac *AdminController) ExportPDF(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	type dailyRevenue struct {
		Date    string
		Revenue float64
	}

	var daily []dailyRevenue
	ac.DB.Raw(`
		SELECT DATE(created_at) as date, COALESCE(SUM(amount), 0) as revenue
		FROM payments
		WHERE status = 'success' AND created_at >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)
		GROUP BY DATE(created_at)
		ORDER BY date ASC
	`).Scan(&daily)

	var totalRevenue float64
	var totalOrders int64
	ac.DB.Model(&models.Payment{}).Where("status = ?", "success").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&totalRevenue)
	ac.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&totalOrders)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sales Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Total revenue: %s", utils.FormatCurrency(totalRevenue)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Completed orders: %d", totalOrders))
	pdf.Ln(12)

	// Chart revenue harian di-embed sebagai PNG
	if len(daily) > 1 {
		xValues := make([]float64, len(daily))
		yValues := make([]float64, len(daily))
		for i, d := range daily {
			xValues[i] = float64(i)
			yValues[i] = d.Revenue
		}

		graph := chart.Chart{
			Title:  "Daily Revenue (30 days)",
			Width:  640,
			Height: 320,
			Series: []chart.Series{
				chart.ContinuousSeries{
					XValues: xValues,
					YValues: yValues,
				},
			},
		}

		var chartBuf bytes.Buffer
		if err := graph.Render(chart.PNG, &chartBuf); err == nil {
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("revenue-chart", opts, &chartBuf)
			pdf.ImageOptions("revenue-chart", 10, pdf.GetY(), 180, 90, false, opts, 0, "")
			pdf.Ln(95)
		} else {
			utils.ErrorLogger.Printf("Failed to render revenue chart: %v", err)
		}
	}

	// Tabel revenue per hari
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(60, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, "Revenue", "1", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, d := range daily {
		pdf.CellFormat(60, 8, d.Date, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 8, utils.FormatCurrency(d.Revenue), "1", 1, "", false, 0, "")
	}

	var pdfBuf bytes.Buffer
	if err := pdf.Output(&pdfBuf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("sales-report-%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdfBuf.Bytes())
}
