package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker-server/internal/middleware"
	"tracker-server/internal/models"
)

// @Summary Текущая команда
// @Description Возвращает команду пользователя и список участников
// @Tags team
// @Produce json
// @Success 200 {object} teamResponse "Команда и участники"
// @Failure 404 {object} ErrorResponse "Пользователь не состоит в команде"
// @Security BearerAuth
// @Router /api/v2/team [get]
func (h *APIHandler) getTeam(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	team, err := h.teams.GetMyTeam(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teamResponse{Team: team.Team, Members: team.Members})
}

// @Summary Создание команды
// @Description Создает новую команду; создатель становится владельцем и первым участником
// @Tags team
// @Produce json
// @Success 201 {object} models.Team "Созданная команда"
// @Failure 409 {object} ErrorResponse "Пользователь уже в команде"
// @Security BearerAuth
// @Router /api/v2/team [post]
func (h *APIHandler) createTeam(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	teamsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, team)
}

// @Summary Вступление в команду
// @Description Присоединяет пользователя к команде по идентификатору и паролю приглашения
// @Tags team
// @Accept json
// @Produce json
// @Param request body joinTeamRequest true "Идентификатор и пароль команды"
// @Success 200 {object} models.Team "Команда"
// @Failure 401 {object} ErrorResponse "Неверный пароль"
// @Failure 409 {object} ErrorResponse "Команда заполнена или пользователь уже в команде"
// @Security BearerAuth
// @Router /api/v2/team/join [post]
func (h *APIHandler) joinTeam(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req joinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	team, err := h.teams.JoinTeam(c.Request.Context(), userID, req.ID, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// @Summary Выход из команды
// @Description Убирает пользователя из команды; уход владельца распускает команду
// @Tags team
// @Produce json
// @Success 200 {object} messageResponse "Пользователь покинул команду"
// @Failure 404 {object} ErrorResponse "Пользователь не состоит в команде"
// @Security BearerAuth
// @Router /api/v2/team/leave [post]
func (h *APIHandler) leaveTeam(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	if err := h.teams.LeaveTeam(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Left the team"})
}

// @Summary Исключение участника
// @Description Удаляет участника из команды; доступно только владельцу
// @Tags team
// @Produce json
// @Param userId path string true "Идентификатор участника"
// @Success 200 {object} messageResponse "Участник исключен"
// @Failure 403 {object} ErrorResponse "Доступно только владельцу"
// @Failure 404 {object} ErrorResponse "Участник не найден"
// @Security BearerAuth
// @Router /api/v2/team/kick/{userId} [post]
func (h *APIHandler) kickMember(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	targetID := c.Param("userId")
	if err := h.teams.KickMember(c.Request.Context(), userID, targetID); err != nil {
		handleServiceError(c, err)
		return
	}

	zap.L().Info("Team member kicked", zap.String("ownerId", userID), zap.String("userId", targetID))
	c.JSON(http.StatusOK, messageResponse{Message: "Member kicked"})
}

// @Summary Скрытие участников
// @Description Сохраняет список участников, скрытых из командного прогресса текущего пользователя
// @Tags team
// @Accept json
// @Produce json
// @Param request body hideTeammatesRequest true "Идентификаторы скрываемых участников"
// @Success 200 {object} messageResponse "Список сохранен"
// @Failure 404 {object} ErrorResponse "Пользователь не состоит в команде"
// @Security BearerAuth
// @Router /api/v2/team/hide [post]
func (h *APIHandler) hideTeammates(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req hideTeammatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.teams.SetHiddenTeammates(c.Request.Context(), userID, req.Users); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Hidden teammates updated"})
}
