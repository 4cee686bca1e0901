package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ltiit/asterisk-api/internal/models"
)

// HealthHandler reports service and database health.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth pings the database and counts known device sections.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	var deviceCount int64
	if overall == "healthy" {
		err := models.GetDB().Model(&models.ConfigRow{}).Distinct("category").Count(&deviceCount).Error
		if err != nil {
			dbStatus = "error: " + err.Error()
			overall = "unhealthy"
		}
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "asterisk-api",
		"components": gin.H{
			"database": dbStatus,
			"devices":  deviceCount,
		},
	})
}
