package web

import (
	"context"
	"net/http"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/database"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logchannel"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
	"github.com/gin-gonic/gin"
)

const (
	requestTimeout = 5 * time.Second
	healthPath     = "/api/health"
)

// API holds what the routes read from. Bot may be nil while the bot starts.
type API struct {
	Warnings    *warnings.Service
	LogChannels *logchannel.Service
	Bot         *discord.ExtendedClient
	// Backend is the configured storage backend name.
	Backend string
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, a *API) {
	api := s.Group("/api")
	{
		api.GET("/status", a.statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", a.botInfoHandler)

		guilds := api.Group("/guilds/:guildID", validSnowflakes("guildID"))
		guilds.GET("/warnings/:userID", validSnowflakes("userID"), a.warningsHandler)
		guilds.GET("/logchannel", a.logChannelHandler)
	}
}

// validSnowflakes rejects requests whose path params are not Discord IDs
func validSnowflakes(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range params {
			if models.ParseSnowflake(c.Param(p)) == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error":   "Bad Request",
					"message": "El parámetro " + p + " no es un ID válido.",
				})
				return
			}
		}
		c.Next()
	}
}

// statusHandler returns the bot and storage status
func (a *API) statusHandler(c *gin.Context) {
	var dbStatus interface{} = gin.H{"configured": false, "isOnline": false}
	if db := database.Get(); db != nil {
		dbStatus = db.Status(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"storage": gin.H{
			"backend": a.Backend,
		},
		"database": dbStatus,
		"bot": gin.H{
			"isOnline": a.botReady(),
		},
	})
}

func (a *API) botReady() bool {
	return a.Bot != nil && a.Bot.IsReady()
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyModBot is running",
	})
}

// botInfoHandler returns information about the bot
func (a *API) botInfoHandler(c *gin.Context) {
	if !a.botReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := a.Bot.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   a.Bot.GuildCount(),
		"commands": a.Bot.Commands.Size(),
		"uptime":   time.Since(a.Bot.StartTime).Round(time.Second).String(),
		"isReady":  true,
	})
}

// warningsHandler lists a member's warnings in a guild
func (a *API) warningsHandler(c *gin.Context) {
	guildID, userID := c.Param("guildID"), c.Param("userID")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := a.Warnings.List(ctx, guildID, userID)
	if err != nil {
		logger.Error("Error leyendo advertencias: "+err.Error(), "WebServer")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "No se pudieron leer las advertencias.",
		})
		return
	}
	if list == nil {
		list = []models.Warn{}
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":  guildID,
		"userId":   userID,
		"count":    len(list),
		"warnings": list,
	})
}

// logChannelHandler returns the log channel bound to a guild
func (a *API) logChannelHandler(c *gin.Context) {
	guildID := c.Param("guildID")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	channelID, ok, err := a.LogChannels.Get(ctx, guildID)
	if err != nil {
		logger.Error("Error leyendo canal de logs: "+err.Error(), "WebServer")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "No se pudo leer el canal de logs.",
		})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "El servidor no tiene canal de logs.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":   guildID,
		"channelId": channelID,
	})
}
