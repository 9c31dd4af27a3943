package api

import (
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profile reads and writes.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMemberMe returns the caller's member profile. Routed behind
// RoleMiddleware(member), so a trainer token never reaches it.
func (h *UserHandler) GetMemberMe(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetByUID(c.Request.Context(), uid, domain.RoleMember)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "Member not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	// Touch activity opportunistically; a failure here is not worth
	// failing the read.
	_ = h.userService.TouchLastActive(c.Request.Context(), uid, domain.RoleMember)

	c.JSON(http.StatusOK, user.Member)
}

func (h *UserHandler) GetTrainerMe(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetByUID(c.Request.Context(), uid, domain.RoleTrainer)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "Trainer not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	_ = h.userService.TouchLastActive(c.Request.Context(), uid, domain.RoleTrainer)

	c.JSON(http.StatusOK, user.Trainer)
}

// UpdateMemberMe applies a partial profile update. Absent JSON fields
// stay untouched.
func (h *UserHandler) UpdateMemberMe(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req service.MemberProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	member, err := h.userService.UpdateMemberProfile(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "Member not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *UserHandler) UpdateTrainerMe(c *gin.Context) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req service.TrainerProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainer, err := h.userService.UpdateTrainerProfile(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "Trainer not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// DeleteMe removes the caller's account and every mapping row that
// references it.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	caller, err := loadCurrentUser(c, h.userService)
	if err != nil {
		return // response already written
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), caller); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "Account not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetMemberByUID(c *gin.Context) {
	h.getByUID(c, domain.RoleMember)
}

func (h *UserHandler) GetTrainerByUID(c *gin.Context) {
	h.getByUID(c, domain.RoleTrainer)
}

func (h *UserHandler) getByUID(c *gin.Context, role domain.Role) {
	user, err := h.userService.GetByUID(c.Request.Context(), c.Param("uid"), role)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if role == domain.RoleTrainer {
		c.JSON(http.StatusOK, user.Trainer)
		return
	}
	c.JSON(http.StatusOK, user.Member)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	user, err := h.userService.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, MapCurrentUserToResponse(user))
}

// loadCurrentUser resolves the token claims to a full CurrentUser. On
// failure the error response has already been written.
func loadCurrentUser(c *gin.Context, users service.UserService) (domain.CurrentUser, error) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return domain.CurrentUser{}, err
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return domain.CurrentUser{}, err
	}

	user, err := users.GetByUID(c.Request.Context(), uid, role)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusUnauthorized, "Account behind this token no longer exists")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load account")
		}
		return domain.CurrentUser{}, err
	}
	return user, nil
}
