package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/relay"
	"github.com/zulandar/semaphore/internal/store"
)

func registerClientRoutes(g *gin.RouterGroup, gdb *gorm.DB, sup *relay.Supervisor) {
	g.GET("/clients", handleListClients(sup))
	g.POST("/clients", handleAddClient(gdb, sup))
	g.DELETE("/clients/:id", handleRemoveClient(gdb, sup))
	g.POST("/clients/:id/start", handleStartClient(sup))
	g.POST("/clients/:id/stop", handleStopClient(sup))
	g.POST("/clients/:id/code", handleSubmitCode(sup))
	g.POST("/clients/:id/password", handleSubmitPassword(sup))
}

func handleListClients(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"clients": sup.AllStatus()})
	}
}

// handleAddClient registers a new client with the supervisor and persists
// it so it survives restarts. The session is not started automatically.
func handleAddClient(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ID      string `json:"id"`
			Kind    string `json:"kind"`
			Phone   string `json:"phone"`
			Token   string `json:"token"`
			APIID   int    `json:"api_id"`
			APIHash string `json:"api_hash"`
			AdminID int64  `json:"admin_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		if body.Kind == "" {
			body.Kind = models.ClientKindUser
		}

		cc := config.ClientConfig{
			ID:      body.ID,
			Kind:    body.Kind,
			Phone:   body.Phone,
			Token:   body.Token,
			APIID:   body.APIID,
			APIHash: body.APIHash,
			AdminID: body.AdminID,
		}
		if err := sup.AddClient(cc); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}

		acct := models.ClientAccount{
			ClientID:  body.ID,
			Kind:      body.Kind,
			Phone:     body.Phone,
			Token:     body.Token,
			APIID:     body.APIID,
			APIHash:   body.APIHash,
			AdminID:   body.AdminID,
			AutoStart: true,
		}
		if err := store.SaveClient(gdb, &acct); err != nil {
			jsonError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"client_id": body.ID})
	}
}

func handleRemoveClient(gdb *gorm.DB, sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := sup.RemoveClient(id); err != nil {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		// Config-file clients have no persisted row; that's fine.
		if err := store.DeleteClient(gdb, id); err != nil {
			c.JSON(http.StatusOK, gin.H{"removed": id, "note": "no persisted account"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": id})
	}
}

func handleStartClient(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := sup.StartClient(id); err != nil {
			jsonError(c, http.StatusConflict, err)
			return
		}
		worker, err := sup.Worker(id)
		if err != nil {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, worker.Status())
	}
}

func handleStopClient(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := sup.StopClient(id); err != nil {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stopped": id})
	}
}

// handleSubmitCode feeds a login code into a session waiting at the
// waiting_code state.
func handleSubmitCode(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Code string `json:"code"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		worker, err := sup.Worker(c.Param("id"))
		if err != nil {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err := worker.SubmitCode(body.Code); err != nil {
			jsonError(c, http.StatusConflict, err)
			return
		}
		c.JSON(http.StatusOK, worker.Status())
	}
}

// handleSubmitPassword feeds a 2FA password into a session waiting at the
// waiting_password state.
func handleSubmitPassword(sup *relay.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
		worker, err := sup.Worker(c.Param("id"))
		if err != nil {
			jsonError(c, http.StatusNotFound, err)
			return
		}
		if err := worker.SubmitPassword(body.Password); err != nil {
			jsonError(c, http.StatusConflict, err)
			return
		}
		c.JSON(http.StatusOK, worker.Status())
	}
}
