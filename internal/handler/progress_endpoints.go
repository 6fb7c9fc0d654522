package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker-server/internal/middleware"
	"tracker-server/internal/models"
)

// @Summary Получение прогресса игрока
// @Description Возвращает отформатированный прогресс владельца токена
// @Tags progress
// @Produce json
// @Success 200 {object} progressResponse "Прогресс игрока"
// @Failure 401 {object} ErrorResponse "Неверный токен"
// @Failure 403 {object} ErrorResponse "Нет разрешения GP"
// @Security BearerAuth
// @Router /api/v2/progress [get]
func (h *APIHandler) getProgress(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	formatted, err := h.progress.GetProgress(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("Failed to get progress", zap.String("userId", userID), zap.Error(err))
		handleServiceError(c, err)
		return
	}

	progressReadsTotal.WithLabelValues("self").Inc()
	c.JSON(http.StatusOK, progressResponse{
		Data: formatted,
		Meta: selfMeta{Self: userID},
	})
}

// @Summary Получение прогресса команды
// @Description Возвращает отформатированный прогресс видимых участников команды
// @Tags progress
// @Produce json
// @Success 200 {object} teamProgressResponse "Прогресс участников команды"
// @Failure 401 {object} ErrorResponse "Неверный токен"
// @Failure 403 {object} ErrorResponse "Нет разрешения TP"
// @Security BearerAuth
// @Router /api/v2/team/progress [get]
func (h *APIHandler) getTeamProgress(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	result, err := h.progress.GetTeamProgress(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("Failed to get team progress", zap.String("userId", userID), zap.Error(err))
		handleServiceError(c, err)
		return
	}

	progressReadsTotal.WithLabelValues("team").Inc()
	c.JSON(http.StatusOK, teamProgressResponse{
		Data: result.Members,
		Meta: teamMeta{Self: userID, HiddenTeammates: result.Hidden},
	})
}

// @Summary Установка уровня игрока
// @Description Сохраняет текущий уровень персонажа (минимум 1)
// @Tags progress
// @Produce json
// @Param levelValue path int true "Новый уровень"
// @Success 200 {object} messageResponse "Уровень обновлен"
// @Failure 400 {object} ErrorResponse "Некорректный уровень"
// @Failure 403 {object} ErrorResponse "Нет разрешения WP"
// @Security BearerAuth
// @Router /api/v2/progress/level/{levelValue} [post]
func (h *APIHandler) setPlayerLevel(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	level, err := strconv.Atoi(c.Param("levelValue"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Level must be an integer",
		})
		return
	}

	if err := h.progress.SetPlayerLevel(c.Request.Context(), userID, level); err != nil {
		handleServiceError(c, err)
		return
	}

	progressWritesTotal.WithLabelValues("level").Inc()
	c.JSON(http.StatusOK, messageResponse{Message: "Player level updated"})
}

// @Summary Изменение состояния задачи
// @Description Переводит задачу в состояние uncompleted/completed/failed и согласует зависимые задачи
// @Tags progress
// @Accept json
// @Produce json
// @Param taskId path string true "Идентификатор задачи"
// @Param request body updateTaskRequest true "Новое состояние"
// @Success 200 {object} messageResponse "Состояние обновлено"
// @Failure 400 {object} ErrorResponse "Некорректное состояние"
// @Failure 403 {object} ErrorResponse "Нет разрешения WP"
// @Failure 503 {object} ErrorResponse "Справочные данные еще не загружены"
// @Security BearerAuth
// @Router /api/v2/progress/task/{taskId} [post]
func (h *APIHandler) updateTask(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	taskID := c.Param("taskId")
	if err := h.progress.UpdateTask(c.Request.Context(), userID, taskID, models.TaskState(req.State)); err != nil {
		handleServiceError(c, err)
		return
	}

	progressWritesTotal.WithLabelValues("task").Inc()
	c.JSON(http.StatusOK, messageResponse{Message: "Task state updated"})
}

// @Summary Изменение прогресса цели
// @Description Обновляет завершенность и/или счетчик цели задачи
// @Tags progress
// @Accept json
// @Produce json
// @Param objectiveId path string true "Идентификатор цели"
// @Param request body updateObjectiveRequest true "Состояние и/или счетчик"
// @Success 200 {object} messageResponse "Цель обновлена"
// @Failure 400 {object} ErrorResponse "Некорректные данные"
// @Failure 403 {object} ErrorResponse "Нет разрешения WP"
// @Security BearerAuth
// @Router /api/v2/progress/objective/{objectiveId} [post]
func (h *APIHandler) updateObjective(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req updateObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	var state *models.TaskState
	if req.State != nil {
		s := models.TaskState(*req.State)
		state = &s
	}

	objectiveID := c.Param("objectiveId")
	if err := h.progress.UpdateObjective(c.Request.Context(), userID, objectiveID, state, req.Count); err != nil {
		handleServiceError(c, err)
		return
	}

	progressWritesTotal.WithLabelValues("objective").Inc()
	c.JSON(http.StatusOK, messageResponse{Message: "Objective updated"})
}
