package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracker-server/internal/middleware"
	"tracker-server/internal/models"
)

// @Summary Список API токенов
// @Description Возвращает все API токены текущего пользователя
// @Tags token
// @Produce json
// @Success 200 {object} tokenListResponse "Токены пользователя"
// @Failure 401 {object} ErrorResponse "Неавторизован"
// @Security BearerAuth
// @Router /api/v2/token [get]
func (h *APIHandler) listTokens(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	tokens, err := h.tokens.ListTokens(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("Failed to list tokens", zap.String("userId", userID), zap.Error(err))
		handleServiceError(c, err)
		return
	}
	if tokens == nil {
		tokens = []models.APIToken{}
	}

	c.JSON(http.StatusOK, tokenListResponse{Tokens: tokens})
}

// @Summary Создание API токена
// @Description Выпускает новый API токен с заданными разрешениями (GP, TP, WP)
// @Tags token
// @Accept json
// @Produce json
// @Param request body createTokenRequest true "Заметка и разрешения"
// @Success 201 {object} models.APIToken "Созданный токен"
// @Failure 400 {object} ErrorResponse "Некорректные разрешения"
// @Failure 409 {object} ErrorResponse "Достигнут лимит токенов"
// @Security BearerAuth
// @Router /api/v2/token [post]
func (h *APIHandler) createToken(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	token, err := h.tokens.CreateToken(c.Request.Context(), userID, req.Note, req.Permissions)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	tokensIssuedTotal.Inc()
	c.JSON(http.StatusCreated, token)
}

// @Summary Отзыв API токена
// @Description Удаляет токен текущего пользователя; кэш инвалидируется
// @Tags token
// @Produce json
// @Param tokenValue path string true "Значение токена"
// @Success 200 {object} messageResponse "Токен отозван"
// @Failure 401 {object} ErrorResponse "Токен не найден или чужой"
// @Security BearerAuth
// @Router /api/v2/token/{tokenValue} [delete]
func (h *APIHandler) deleteToken(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	tokenValue := c.Param("tokenValue")
	if err := h.tokens.DeleteToken(c.Request.Context(), userID, tokenValue); err != nil {
		handleServiceError(c, err)
		return
	}

	tokensRevokedTotal.Inc()
	c.JSON(http.StatusOK, messageResponse{Message: "Token revoked"})
}
