package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/controllers"
	"github.com/snytra/restaurant-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	customerCtrl := controllers.NewCustomerController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)
	reservationCtrl := controllers.NewReservationController(db)
	cleanLogCtrl := controllers.NewCleaningLogController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)
	billingCtrl := controllers.NewBillingController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// -- CUSTOMER (Tanpa Auth) --
	// Lihat kategori dan menu
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/by-category", menuCtrl.GetMenuByCategory)

	// Ketersediaan reservasi (publik, dipakai form booking)
	r.GET("/reservations/available-slots", reservationCtrl.GetAvailableSlots)
	r.GET("/reservations/available-tables", reservationCtrl.GetAvailableTables)

	// Membuat reservasi dengan audit log
	reservationGroup := r.Group("/reservations")
	reservationGroup.Use(middlewares.ReservationLoggerMiddleware())
	{
		reservationGroup.POST("", reservationCtrl.CreateReservation)
	}

	// Membuat order (Customer tidak perlu login)
	r.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// Membayar (mis. cash/QRIS) tanpa login, dengan rate limiter khusus
	paymentGroup := r.Group("/payments")
	paymentGroup.Use(middlewares.PaymentRateLimiter(), middlewares.LogPaymentRequest())
	{
		paymentGroup.POST("", controllers.CreatePayment)
		paymentGroup.POST("/callback", controllers.HandlePaymentCallback)
		paymentGroup.GET("/config", controllers.GetMidtransConfig)
	}

	// Webhook billing langganan
	r.POST("/billing/callback", billingCtrl.HandleBillingCallback)
	r.GET("/billing/plans", billingCtrl.GetPlans)

	// Kelola langganan: token wajib lewat header, tidak menerima query string
	billing := r.Group("/billing")
	billing.Use(middlewares.AuthMiddleware())
	{
		billing.POST("/subscribe", billingCtrl.Subscribe)
		billing.GET("/subscription", billingCtrl.GetSubscription)
		billing.POST("/:subscription_id/invoice", billingCtrl.CreateInvoice)
		billing.POST("/:subscription_id/cancel", billingCtrl.CancelSubscription)
	}

	// Public routes untuk customer
	r.POST("/scan-table", customerCtrl.ScanTable)
	r.GET("/sessions/active", customerCtrl.GetActiveSession)
	r.GET("/tables", tableCtrl.GetAllTables)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.EnhancedAuthMiddleware())

	// Profil user (Admin/Staff/Chef)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	auth.POST("/logout", userCtrl.Logout)

	// TABLE
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables/by-status", tableCtrl.FindTablesByStatus)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
	auth.PUT("/tables/:table_id", tableCtrl.UpdateTable)
	auth.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	// RESERVATIONS (staff/admin)
	auth.GET("/reservations", reservationCtrl.GetReservations)
	auth.GET("/reservations/:id", reservationCtrl.GetReservation)
	auth.PATCH("/reservations/:id", reservationCtrl.UpdateReservationStatus)
	auth.POST("/reservations/:id/assign-table", reservationCtrl.AssignTable)
	auth.DELETE("/reservations/:id", reservationCtrl.DeleteReservation)

	// CUSTOMERS (staff/admin)
	auth.GET("/customers", customerCtrl.GetAllCustomers)
	auth.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	auth.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)

	// MENU CATEGORIES (staff/admin only)
	auth.POST("/categories", categoryCtrl.CreateCategory)
	auth.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

	// MENUS (staff/admin)
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	auth.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// ORDERS (staff/admin)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

	// PAYMENTS (staff/admin)
	auth.GET("/payments", controllers.GetPayments)
	auth.POST("/payments", controllers.CreatePayment)
	auth.GET("/payments/:id", controllers.GetPayment)
	auth.DELETE("/payments/:id", controllers.DeletePayment)
	auth.POST("/payments/:id/verify", controllers.VerifyPayment)
	auth.GET("/payment-status/:payment_id", controllers.CheckPaymentStatus)

	// CLEANING LOGS (Cleaner, staff, admin)
	auth.GET("/cleaning-logs", cleanLogCtrl.GetAllCleaningLogs)
	auth.POST("/cleaning-logs", cleanLogCtrl.CreateCleaningLog)
	auth.GET("/cleaning-logs/:clean_id", cleanLogCtrl.GetCleaningLogByID)
	auth.PATCH("/cleaning-logs/:clean_id", cleanLogCtrl.UpdateCleaningLog)
	auth.DELETE("/cleaning-logs/:clean_id", cleanLogCtrl.DeleteCleaningLog)

	// NOTIFICATIONS (staff/admin)
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.POST("/notifications", notificationCtrl.CreateNotification)
	auth.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)
	auth.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// KDS item-level (Chef)
	auth.POST("/order-items/:item_id/start", orderCtrl.StartCookingItem)
	auth.POST("/order-items/:item_id/finish", orderCtrl.FinishCookingItem)

	// KDS order-level (opsional)
	auth.POST("/orders/:order_id/start-cooking", orderCtrl.StartCooking)
	auth.POST("/orders/:order_id/finish-cooking", orderCtrl.FinishCooking)
	auth.POST("/orders/:order_id/complete", orderCtrl.CompleteOrder)

	// Routes untuk Chef
	auth.GET("/kitchen/pending-items", orderCtrl.GetPendingItems)
	auth.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)

	// Routes untuk Staff/Cleaner
	auth.PATCH("/tables/:table_id/clean", tableCtrl.MarkTableClean)

	// Routes untuk Admin
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	auth.GET("/order-flow", adminCtrl.MonitorOrderFlow)
	auth.GET("/order-flow/recent", adminCtrl.GetOrderFlow)
	auth.GET("/order-stats", adminCtrl.GetOrderStats)
	auth.GET("/analytics", adminCtrl.GetAnalytics)
	auth.GET("/analytics/orders", orderCtrl.GetOrderAnalytics)
	auth.GET("/sales-report", adminCtrl.GetSalesReport)
	auth.GET("/reports/export", adminCtrl.ExportData)
	auth.GET("/reports/export-pdf", adminCtrl.ExportPDF)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware(), middlewares.RoleCheck())
	{
		wsGroup.GET("/:role", controllers.KDSHandler)
	}

	return r
}
