package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/relay"
	"github.com/zulandar/semaphore/internal/store"
)

func registerMiscRoutes(g *gin.RouterGroup, gdb *gorm.DB, sup *relay.Supervisor) {
	g.GET("/status", handleStatus(sup))
	g.GET("/chats", handleChats(sup))
	g.POST("/refresh-chats", handleRefreshChats(gdb, sup))
	g.GET("/settings", handleListSettings(gdb))
	g.PUT("/settings/:key", handleSetSetting(gdb))
}

func handleStatus(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := sup.AllStatus()
		connected := 0
		for _, s := range statuses {
			if s.Connected {
				connected++
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"clients":   statuses,
			"connected": connected,
			"total":     len(statuses),
		})
	}
}

// handleChats returns a merged dialog snapshot from every connected client.
func handleChats(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		seen := make(map[string]bool)
		var chats []relay.Chat
		for _, s := range sup.AllStatus() {
			if !s.Connected {
				continue
			}
			worker, err := sup.Worker(s.ClientID)
			if err != nil {
				continue
			}
			snapshot, err := worker.ChatsSync()
			if err != nil {
				continue
			}
			for _, ch := range snapshot {
				if seen[ch.ID] {
					continue
				}
				seen[ch.ID] = true
				chats = append(chats, ch)
			}
		}
		c.JSON(http.StatusOK, gin.H{"chats": chats})
	}
}

// handleRefreshChats updates stored chat display names on every rule from a
// live dialog snapshot.
func handleRefreshChats(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var updated int64
		for _, s := range sup.AllStatus() {
			if !s.Connected {
				continue
			}
			worker, err := sup.Worker(s.ClientID)
			if err != nil {
				continue
			}
			snapshot, err := worker.ChatsSync()
			if err != nil {
				continue
			}
			for _, ch := range snapshot {
				n, err := store.UpdateChatNames(gdb, ch.ID, ch.Title)
				if err != nil {
					jsonError(c, http.StatusInternalServerError, err)
					return
				}
				updated += n
			}
		}
		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

func handleListSettings(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := store.AllSettings(gdb)
		if err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

func handleSetSetting(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		var body struct {
			Value       string `json:"value"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		if key == "" {
			jsonError(c, http.StatusBadRequest, fmt.Errorf("api: setting key is required"))
			return
		}
		if err := store.SetSetting(gdb, key, body.Value, body.Description); err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
	}
}
