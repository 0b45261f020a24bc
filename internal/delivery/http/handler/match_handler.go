package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/middleware"
	"github.com/nthottathil/bridge-web-app/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
}

func NewMatchHandler(matchUseCase *match.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

// FindMatches returns the caller's scored match feed
// @Summary Find matches
// @Description Best-scoring eligible candidates, highest first
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max results (default 3)"
// @Success 200 {array} match.MatchResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/matches [get]
func (h *MatchHandler) FindMatches(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			badRequest(c, "limit must be an integer between 1 and 50")
			return
		}
		limit = parsed
	}

	matches, err := h.matchUseCase.FindMatches(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, matches)
}

// CreateRequest sends a match request to another user
// @Summary Send match request
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body match.CreateRequestInput true "Target user"
// @Success 201 {object} domain.MatchRequest
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/matches/request [post]
func (h *MatchHandler) CreateRequest(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req match.CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	request, err := h.matchUseCase.CreateRequest(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListRequests returns pending requests addressed to the caller
// @Summary List incoming requests
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} match.IncomingRequestResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/matches/requests [get]
func (h *MatchHandler) ListRequests(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	requests, err := h.matchUseCase.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Accept accepts a pending request, joining or forming a group
// @Summary Accept match request
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} match.AcceptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/matches/{request_id}/accept [post]
func (h *MatchHandler) Accept(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		badRequest(c, "invalid request id")
		return
	}

	result, err := h.matchUseCase.Accept(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Reject declines a pending request
// @Summary Reject match request
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/matches/{request_id}/reject [post]
func (h *MatchHandler) Reject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		badRequest(c, "invalid request id")
		return
	}

	if err := h.matchUseCase.Reject(c.Request.Context(), userID, requestID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "request rejected"})
}
