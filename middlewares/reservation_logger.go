package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/snytra/restaurant-app/utils"
)

// ReservationLoggerMiddleware mencatat setiap percobaan booking supaya
// konflik meja bisa ditelusuri dari log.
func ReservationLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Reservation request: %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())

		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			utils.ErrorLogger.Printf("Reservation request failed with status %d: %s %s", status, c.Request.Method, c.Request.URL.Path)
		}
	}
}
