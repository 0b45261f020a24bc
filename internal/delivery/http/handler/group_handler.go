package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/middleware"
	"github.com/nthottathil/bridge-web-app/internal/usecase/group"
)

type GroupHandler struct {
	groupUseCase *group.GroupUseCase
}

func NewGroupHandler(groupUseCase *group.GroupUseCase) *GroupHandler {
	return &GroupHandler{
		groupUseCase: groupUseCase,
	}
}

// GetMyGroup returns the caller's active group, or null
// @Summary Get my group
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Success 200 {object} group.GroupResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/user/group [get]
func (h *GroupHandler) GetMyGroup(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	result, err := h.groupUseCase.GetMyGroup(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// No active membership is a normal state, not an error.
	c.JSON(http.StatusOK, result)
}

// GetGroup returns a group the caller belongs to
// @Summary Get group
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param group_id path int true "Group ID"
// @Success 200 {object} group.GroupResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/groups/{group_id} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, groupID, ok := h.callerAndGroup(c)
	if !ok {
		return
	}

	result, err := h.groupUseCase.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMembers lists active members of a group
// @Summary List group members
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param group_id path int true "Group ID"
// @Success 200 {array} group.MemberResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/groups/{group_id}/members [get]
func (h *GroupHandler) GetMembers(c *gin.Context) {
	userID, groupID, ok := h.callerAndGroup(c)
	if !ok {
		return
	}

	members, err := h.groupUseCase.GetMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// Leave removes the caller from a group
// @Summary Leave group
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param group_id path int true "Group ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/groups/{group_id}/leave [post]
func (h *GroupHandler) Leave(c *gin.Context) {
	userID, groupID, ok := h.callerAndGroup(c)
	if !ok {
		return
	}

	if err := h.groupUseCase.Leave(c.Request.Context(), userID, groupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "left group"})
}

// SendMessage posts a message to the group
// @Summary Send group message
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param group_id path int true "Group ID"
// @Param request body group.SendMessageInput true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/groups/{group_id}/messages [post]
func (h *GroupHandler) SendMessage(c *gin.Context) {
	userID, groupID, ok := h.callerAndGroup(c)
	if !ok {
		return
	}

	var req group.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	message, err := h.groupUseCase.SendMessage(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetMessages returns group messages, oldest first
// @Summary Get group messages
// @Description Poll endpoint; pass since to fetch only newer messages
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param group_id path int true "Group ID"
// @Param since query string false "RFC 3339 timestamp"
// @Param limit query int false "Max messages (default 50, max 100)"
// @Success 200 {array} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/groups/{group_id}/messages [get]
func (h *GroupHandler) GetMessages(c *gin.Context) {
	userID, groupID, ok := h.callerAndGroup(c)
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "since must be an RFC 3339 timestamp")
			return
		}
		since = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	messages, err := h.groupUseCase.GetMessages(c.Request.Context(), userID, groupID, since, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *GroupHandler) callerAndGroup(c *gin.Context) (userID, groupID int, ok bool) {
	userID, authed := middleware.UserID(c)
	if !authed {
		unauthorized(c)
		return 0, 0, false
	}

	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		badRequest(c, "invalid group id")
		return 0, 0, false
	}

	return userID, groupID, true
}
