package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snytra/restaurant-app/utils"
)

// RoleCheck memvalidasi role user sesuai path param; admin selalu lolos.
func RoleCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		userRole, exists := c.Get("role")

		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		switch role {
		case "admin":
			if userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
				c.Abort()
				return
			}
		case "chef":
			if userRole != "chef" && userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("chef access required"))
				c.Abort()
				return
			}
		case "staff":
			if userRole != "staff" && userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("staff access required"))
				c.Abort()
				return
			}
		case "cleaner":
			if userRole != "cleaner" && userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("cleaner access required"))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
