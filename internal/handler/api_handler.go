package handler

import (
	"github.com/gin-gonic/gin"

	"tracker-server/internal/middleware"
	"tracker-server/internal/models"
	"tracker-server/internal/service"
)

type APIHandler struct {
	progress  service.ProgressService
	tokens    service.TokenService
	teams     service.TeamService
	jwtSecret string
}

func NewAPIHandler(
	progress service.ProgressService,
	tokens service.TokenService,
	teams service.TeamService,
	jwtSecret string,
) *APIHandler {
	return &APIHandler{
		progress:  progress,
		tokens:    tokens,
		teams:     teams,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes wires two route families under /api/v2: progress routes
// authenticated by API tokens issued here (permission-gated per route) and
// account routes authenticated by the external identity provider's JWTs.
// The rate limiter is applied to token creation only.
func (h *APIHandler) RegisterRoutes(router *gin.Engine, rateLimitMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v2")
	api.Use(middleware.TokenAuthMiddleware(h.tokens))
	{
		api.GET("/progress",
			middleware.RequirePermission(models.PermissionGetProgress), h.getProgress)
		api.GET("/team/progress",
			middleware.RequirePermission(models.PermissionTeamProgress), h.getTeamProgress)
		api.POST("/progress/level/:levelValue",
			middleware.RequirePermission(models.PermissionWriteProgress), h.setPlayerLevel)
		api.POST("/progress/task/:taskId",
			middleware.RequirePermission(models.PermissionWriteProgress), h.updateTask)
		// Цели лежат на своём пути: вложенный "/progress/task/objective/..."
		// конфликтовал бы с ":taskId" в дереве маршрутов gin.
		api.POST("/progress/objective/:objectiveId",
			middleware.RequirePermission(models.PermissionWriteProgress), h.updateObjective)
	}

	account := router.Group("/api/v2")
	account.Use(middleware.UserAuthMiddleware(h.jwtSecret))
	{
		account.GET("/token", h.listTokens)
		account.POST("/token", rateLimitMiddleware, h.createToken)
		account.DELETE("/token/:tokenValue", h.deleteToken)

		account.GET("/team", h.getTeam)
		account.POST("/team", h.createTeam)
		account.POST("/team/join", h.joinTeam)
		account.POST("/team/leave", h.leaveTeam)
		account.POST("/team/kick/:userId", h.kickMember)
		account.POST("/team/hide", h.hideTeammates)
	}
}
