package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/store"
)

func registerLogRoutes(g *gin.RouterGroup, gdb *gorm.DB) {
	g.GET("/logs", handleListLogs(gdb))
	g.POST("/logs/batch-delete", handleBatchDeleteLogs(gdb))
	g.POST("/logs/clear", handleClearLogs(gdb))
}

func handleListLogs(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

		logs, total, err := store.Logs(gdb, store.LogFilters{
			RuleName: c.Query("rule_name"),
			Status:   c.Query("status"),
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"logs":     logs,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		})
	}
}

func handleBatchDeleteLogs(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			IDs []uint `json:"ids"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		deleted, err := store.DeleteLogs(gdb, body.IDs)
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

func handleClearLogs(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := store.ClearLogs(gdb)
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}
