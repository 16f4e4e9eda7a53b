package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	CORSOrigins []string
}

// NewRouter wires every endpoint on a gin engine
func NewRouter(cfg RouterConfig, h *Handler, feed *LiveFeed, resolver IdentityResolver, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/api/auth/login", h.login)
	if feed != nil {
		router.GET("/ws/oversight", feed.Serve)
	}

	api := router.Group("/api")
	api.Use(JWTMiddleware(resolver))
	{
		api.GET("/me", h.me)

		shifts := api.Group("/shifts")
		shifts.POST("", h.openShift)
		shifts.GET("/active", h.activeShift)
		shifts.PATCH("/:id", h.updateShift)
		shifts.POST("/:id/close", h.closeShift)
		shifts.POST("/:id/validate", h.validateShift)
		shifts.POST("/:id/vehicle", h.changeVehicle)
		shifts.GET("/:id/trips", h.listTrips)
		shifts.GET("/:id/expenses", h.listExpenses)
		shifts.GET("/:id/totals", h.shiftTotals)
		shifts.GET("/:id/report", h.shiftReport)
		shifts.GET("/:id/report/xlsx", h.shiftReportXLSX)

		api.POST("/trips", h.startTrip)
		api.POST("/trips/:id/end", h.endTrip)
		api.POST("/trips/:id/cancel", h.cancelTrip)

		api.POST("/expenses", h.logExpense)

		oversight := api.Group("/oversight", RequireCapability(entity.ActionViewOversight))
		oversight.GET("/shifts", h.activeShifts)
		oversight.GET("/metrics", h.fleetMetrics)
		oversight.GET("/activity", h.activity)
		oversight.GET("/notifications", h.notifications)
		oversight.GET("/export/csv", RequireCapability(entity.ActionExport), h.exportActiveShiftsCSV)
		oversight.GET("/export/xlsx", RequireCapability(entity.ActionExport), h.exportActiveShiftsXLSX)

		admin := api.Group("/admin", RequireCapability(entity.ActionManageData))
		admin.DELETE("/expenses", h.deleteAllExpenses)

		registerCatalog(api, "/vehicles", h.svc.Vehicles, log)
		registerCatalog(api, "/clients", h.svc.Clients, log)
		registerCatalog(api, "/payment-methods", h.svc.PaymentMethods, log)
		registerCatalog(api, "/drivers", h.svc.Drivers, log)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
