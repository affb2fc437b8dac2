package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/relay"
	"github.com/zulandar/semaphore/internal/store"
)

func registerRuleRoutes(g *gin.RouterGroup, gdb *gorm.DB, sup *relay.Supervisor) {
	g.GET("/rules", handleListRules(gdb))
	g.GET("/rules/:id", handleGetRule(gdb))
	g.POST("/rules", handleCreateRule(gdb, sup))
	g.PUT("/rules/:id", handleUpdateRule(gdb, sup))
	g.DELETE("/rules/:id", handleDeleteRule(gdb, sup))
	g.POST("/rules/:id/copy", handleCopyRule(gdb))
	g.POST("/rules/:id/replay", handleReplayRule(gdb, sup))

	g.POST("/rules/:id/keywords", handleAddKeyword(gdb))
	g.DELETE("/keywords/:id", handleDeleteKeyword(gdb))
	g.POST("/rules/:id/replace-rules", handleAddReplaceRule(gdb))
	g.DELETE("/replace-rules/:id", handleDeleteReplaceRule(gdb))
}

func ruleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return uint(id), true
}

func handleListRules(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rules []models.ForwardRule
		var err error
		if c.Query("active") == "true" {
			rules, err = store.AllActiveRules(gdb)
		} else {
			rules, err = store.AllRules(gdb)
		}
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rules": rules})
	}
}

func handleGetRule(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		rule, err := store.RuleByID(gdb, id)
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, rule)
	}
}

func handleCreateRule(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bind over the defaults so omitted gates keep their documented values.
		rule := models.DefaultForwardRule()
		if err := c.ShouldBindJSON(&rule); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		if err := store.CreateRule(gdb, &rule); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		sup.RefreshMonitoredChats()
		c.JSON(http.StatusCreated, rule)
	}
}

func handleUpdateRule(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		// Associations and identity are managed through their own endpoints.
		delete(updates, "id")
		delete(updates, "keywords")
		delete(updates, "replace_rules")
		delete(updates, "created_at")
		delete(updates, "updated_at")

		rule, err := store.UpdateRule(gdb, id, updates)
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		sup.RefreshMonitoredChats()
		c.JSON(http.StatusOK, rule)
	}
}

func handleDeleteRule(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		if err := store.DeleteRule(gdb, id); err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		sup.RefreshMonitoredChats()
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleCopyRule(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		c.ShouldBindJSON(&body)

		rule, err := store.CopyRule(gdb, id, body.Name)
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusCreated, rule)
	}
}

// handleReplayRule queues a historical replay for the rule. The replay runs
// asynchronously inside the owning client's session; the response only
// confirms submission.
func handleReplayRule(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		rule, err := store.RuleByID(gdb, id)
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		if err := sup.ProcessHistoryMessages(rule); err != nil {
			jsonError(c, http.StatusConflict, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "submitted", "rule": rule.Name})
	}
}

func handleAddKeyword(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		var kw models.Keyword
		if err := c.ShouldBindJSON(&kw); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		kw.RuleID = id
		if err := store.AddKeyword(gdb, &kw); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		c.JSON(http.StatusCreated, kw)
	}
}

func handleDeleteKeyword(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		if err := store.DeleteKeyword(gdb, id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			jsonError(c, status, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleAddReplaceRule(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		rr := models.DefaultReplaceRule()
		if err := c.ShouldBindJSON(&rr); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		rr.RuleID = id
		if err := store.AddReplaceRule(gdb, &rr); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		c.JSON(http.StatusCreated, rr)
	}
}

func handleDeleteReplaceRule(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ruleID(c)
		if !ok {
			return
		}
		if err := store.DeleteReplaceRule(gdb, id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			jsonError(c, status, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}
