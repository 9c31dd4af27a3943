package api

import (
	"errors"
	"fitcoach/platform/internal/client"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/service"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves sessions, quests and the workout catalog.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

type CreateSessionRequest struct {
	SessionType domain.SessionType `json:"session_type" binding:"omitempty,oneof=ai quest custom"`
	QuestID     *uint              `json:"quest_id"`
	MemberUID   string             `json:"member_uid"`
}

type SaveSessionRequest struct {
	Exercises []service.ExerciseInput `json:"exercises" binding:"required,min=1,dive"`
}

type CreateQuestRequest struct {
	MemberUID string                  `json:"member_uid" binding:"required"`
	Workouts  []service.ExerciseInput `json:"workouts" binding:"required,min=1,dive"`
}

// abortWithPeerError relays a user-service failure to the caller with
// the peer's status code and body intact. Returns false when the error
// did not come from a peer call.
func abortWithPeerError(c *gin.Context, err error) bool {
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	c.Abort()
	c.Data(statusErr.Code, "application/json", []byte(statusErr.Body))
	return true
}

// --- Session Handlers ---

func (h *WorkoutHandler) CreateSession(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	header, err := h.workoutService.CreateSession(c.Request.Context(), getTokenFromContext(c), callerUID, callerRole, service.CreateSessionInput{
		SessionType: req.SessionType,
		QuestID:     req.QuestID,
		MemberUID:   req.MemberUID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotMapped):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrMemberRequired), errors.Is(err, service.ErrQuestIDRequired):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrQuestNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case abortWithPeerError(c, err):
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create session")
		}
		return
	}
	c.JSON(http.StatusCreated, header)
}

func (h *WorkoutHandler) SaveSession(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session id")
		return
	}

	var req SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	header, err := h.workoutService.SaveSession(c.Request.Context(), getTokenFromContext(c), callerUID, callerRole, uint(sessionID), req.Exercises)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotSessionOwner):
			abortWithError(c, http.StatusForbidden, err.Error())
		case abortWithPeerError(c, err):
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save session")
		}
		return
	}
	c.JSON(http.StatusOK, header)
}

func (h *WorkoutHandler) ListMemberSessions(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	sessions, err := h.workoutService.ListMemberSessions(c.Request.Context(), callerUID, callerRole, c.Param("uid"))
	if err != nil {
		if errors.Is(err, service.ErrNotSessionOwner) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *WorkoutHandler) GetSessionDetail(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session id")
		return
	}

	detail, err := h.workoutService.SessionDetail(c.Request.Context(), getTokenFromContext(c), callerUID, callerRole, uint(sessionID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotSessionOwner):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load session")
		}
		return
	}
	c.JSON(http.StatusOK, detail)
}

// --- Quest Handlers ---

// CreateQuest assigns a workout plan to a mapped member. Routed behind
// RoleMiddleware(trainer).
func (h *WorkoutHandler) CreateQuest(c *gin.Context) {
	trainerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	quest, err := h.workoutService.CreateQuest(c.Request.Context(), getTokenFromContext(c), trainerUID, req.MemberUID, req.Workouts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotMapped):
			abortWithError(c, http.StatusForbidden, err.Error())
		case abortWithPeerError(c, err):
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create quest")
		}
		return
	}
	c.JSON(http.StatusCreated, quest)
}

func (h *WorkoutHandler) ListQuests(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	quests, err := h.workoutService.ListQuests(c.Request.Context(), callerUID, callerRole)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list quests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

func (h *WorkoutHandler) ListQuestsForMember(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	quests, err := h.workoutService.QuestsForMember(c.Request.Context(), callerUID, callerRole, c.Param("member_uid"))
	if err != nil {
		if errors.Is(err, service.ErrNotSessionOwner) {
			abortWithError(c, http.StatusForbidden, "Members can only view their own quests")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to list quests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

func (h *WorkoutHandler) DeleteQuest(c *gin.Context) {
	trainerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	questID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid quest id")
		return
	}

	if err := h.workoutService.DeleteQuest(c.Request.Context(), trainerUID, uint(questID)); err != nil {
		switch {
		case errors.Is(err, service.ErrQuestNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotSessionOwner):
			abortWithError(c, http.StatusForbidden, "Can only delete own quests")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete quest")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ExpireQuests flips a member's not_started quests to deadline_passed.
func (h *WorkoutHandler) ExpireQuests(c *gin.Context) {
	expired, err := h.workoutService.ExpireQuests(c.Request.Context(), c.Param("member_uid"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to expire quests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

// GetOldestNotStartedQuest is member-only; routed behind
// RoleMiddleware(member).
func (h *WorkoutHandler) GetOldestNotStartedQuest(c *gin.Context) {
	memberUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	quest, err := h.workoutService.OldestNotStartedQuest(c.Request.Context(), memberUID)
	if err != nil {
		if errors.Is(err, service.ErrQuestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load quest")
		return
	}
	c.JSON(http.StatusOK, quest)
}

// --- Reporting Handlers ---

func (h *WorkoutHandler) GetSessionCounts(c *gin.Context) {
	start, err := parseDateParam(c.Query("start_date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid start_date")
		return
	}
	end, err := parseDateParam(c.Query("end_date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid end_date")
		return
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}

	counts, err := h.workoutService.SessionCounts(c.Request.Context(), c.Param("member_uid"), start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count sessions")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// parseDateParam accepts RFC3339 or plain YYYY-MM-DD values.
func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (h *WorkoutHandler) GetLastSessionUpdate(c *gin.Context) {
	last, err := h.workoutService.LastSessionUpdate(c.Request.Context(), c.Param("uid"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load last session date")
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_session_update": last})
}

// --- Catalog Handlers ---

func (h *WorkoutHandler) SearchWorkouts(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	workouts, err := h.workoutService.SearchWorkouts(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search workouts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": workouts})
}

func (h *WorkoutHandler) GetWorkoutsByPart(c *gin.Context) {
	var partID *uint
	if raw := c.Query("part_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid part_id")
			return
		}
		id := uint(parsed)
		partID = &id
	}

	byPart, err := h.workoutService.WorkoutsByPart(c.Request.Context(), partID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workouts")
		return
	}
	c.JSON(http.StatusOK, byPart)
}

func (h *WorkoutHandler) GetWorkoutName(c *gin.Context) {
	key, err := strconv.ParseUint(c.Param("key"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout key")
		return
	}

	name, err := h.workoutService.WorkoutName(c.Request.Context(), uint(key))
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout name")
		return
	}
	c.JSON(http.StatusOK, gin.H{"workout_name": name})
}

// GetWorkoutRecords returns a member's per-quest set history for one
// catalog key. Members see their own; trainers pass ?member_uid.
func (h *WorkoutHandler) GetWorkoutRecords(c *gin.Context) {
	callerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	callerRole, _ := getUserRoleFromContext(c)

	key, err := strconv.ParseUint(c.Param("key"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout key")
		return
	}

	memberUID := callerUID
	if callerRole == domain.RoleTrainer {
		memberUID = c.Query("member_uid")
		if memberUID == "" {
			abortWithError(c, http.StatusBadRequest, "Query parameter 'member_uid' is required for trainers")
			return
		}
	}

	records, err := h.workoutService.WorkoutRecords(c.Request.Context(), memberUID, uint(key))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
