package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/snytra/restaurant-app/utils"
)

// PaymentRateLimiter membatasi endpoint pembayaran: 10 request per detik global.
func PaymentRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(429, gin.H{
				"error":   "Too many requests",
				"message": "Please wait before making another payment request",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogPaymentRequest mencatat detail request ke endpoint pembayaran.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		utils.InfoLogger.Printf(
			"Payment Request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, c.Writer.Status(), time.Since(start),
		)
	}
}
