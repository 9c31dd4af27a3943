package api

import (
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/service"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MappingHandler serves the trainer/member relationship endpoints.
type MappingHandler struct {
	mappingService service.MappingService
	userService    service.UserService
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(mappingService service.MappingService, userService service.UserService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService, userService: userService}
}

// --- Request/Response Structs ---

type MappingRequestRequest struct {
	OtherEmail      string `json:"other_email" binding:"required,email"`
	InitialSessions int    `json:"initial_sessions" binding:"min=0"`
}

type MappingStatusRequest struct {
	NewStatus domain.MappingStatus `json:"new_status" binding:"required,oneof=accepted expired"`
}

type UpdateSessionsRequest struct {
	// Pointer so an explicit zero delta still binds; zero is a valid
	// no-op that just reports the balance.
	SessionsToAdd *int `json:"sessions_to_add" binding:"required"`
}

// --- Handler Methods ---

// RequestMapping creates a pending mapping with the user behind
// other_email. Either side may initiate.
func (h *MappingHandler) RequestMapping(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return
	}

	var req MappingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	mapping, err := h.mappingService.Request(c.Request.Context(), caller, req.OtherEmail, req.InitialSessions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCounterpartNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMappingActive):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMappingPending):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create mapping request")
		}
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

// RespondToMapping accepts or declines a pending request. Only the
// non-requesting party may respond.
func (h *MappingHandler) RespondToMapping(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return
	}

	mappingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid mapping id")
		return
	}

	var req MappingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	mapping, err := h.mappingService.Respond(c.Request.Context(), caller, uint(mappingID), req.NewStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMappingNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotMappingParty), errors.Is(err, service.ErrRequesterResponds):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update mapping status")
		}
		return
	}
	c.JSON(http.StatusOK, mapping)
}

func (h *MappingHandler) ListMyMappings(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return
	}

	mappings, err := h.mappingService.ListMine(c.Request.Context(), caller)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list mappings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return
	}

	if err := h.mappingService.Remove(c.Request.Context(), caller, c.Param("other_uid")); err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete mapping")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRemainingSessions reports the credit balance of an accepted
// mapping with the other party.
func (h *MappingHandler) GetRemainingSessions(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return
	}

	remaining, err := h.mappingService.RemainingSessions(c.Request.Context(), caller, c.Param("other_uid"))
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load remaining sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_sessions": remaining})
}

// UpdateSessions adjusts the credit balance. Routed behind
// RoleMiddleware(trainer). The :id path segment carries the member's
// uid; it shares a name with the status route because the router wants
// one wildcard per segment.
func (h *MappingHandler) UpdateSessions(c *gin.Context) {
	trainerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	remaining, err := h.mappingService.AdjustSessions(c.Request.Context(), trainerUID, c.Param("id"), *req.SessionsToAdd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMappingNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientCredits):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update sessions")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_sessions": remaining})
}

// CheckMapping is the cross-service authorization endpoint. The caller
// must be the trainer named in the path.
func (h *MappingHandler) CheckMapping(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	if callerUID != c.Param("trainer_uid") {
		abortWithError(c, http.StatusForbidden, "Can only check own mappings")
		return
	}

	exists, err := h.mappingService.CheckAccepted(c.Request.Context(), c.Param("trainer_uid"), c.Param("member_uid"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to check mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// GetConnectedMember returns the profile of an accepted-mapped member.
func (h *MappingHandler) GetConnectedMember(c *gin.Context) {
	trainerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	member, err := h.mappingService.ConnectedMember(c.Request.Context(), trainerUID, c.Param("member_uid"))
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load connected member")
		return
	}
	c.JSON(http.StatusOK, member)
}
