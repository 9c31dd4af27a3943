package api

import (
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/metrics"
	"fitcoach/platform/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupCommon wires the middleware and endpoints every service shares.
func setupCommon(router *gin.Engine, m *metrics.Metrics) {
	router.Use(TraceIDMiddleware())
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", m.Handler())
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

// SetupUserRoutes wires the identity, profile and mapping endpoints.
func SetupUserRoutes(
	router *gin.Engine,
	jwtSecret string,
	m *metrics.Metrics,
	authService service.AuthService,
	userService service.UserService,
	mappingService service.MappingService,
) {
	setupCommon(router, m)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	mappingHandler := NewMappingHandler(mappingService, userService)

	authMiddleware := AuthMiddleware(jwtSecret)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		membersGroup := protected.Group("/members")
		{
			membersGroup.GET("/me", RoleMiddleware(domain.RoleMember), userHandler.GetMemberMe)
			membersGroup.PATCH("/me", RoleMiddleware(domain.RoleMember), userHandler.UpdateMemberMe)
			membersGroup.DELETE("/me", RoleMiddleware(domain.RoleMember), userHandler.DeleteMe)
			membersGroup.GET("/byuid/:uid", userHandler.GetMemberByUID)
			membersGroup.GET("/byemail/:email", userHandler.GetByEmail)
		}

		trainersGroup := protected.Group("/trainers")
		{
			trainersGroup.GET("/me", RoleMiddleware(domain.RoleTrainer), userHandler.GetTrainerMe)
			trainersGroup.PATCH("/me", RoleMiddleware(domain.RoleTrainer), userHandler.UpdateTrainerMe)
			trainersGroup.DELETE("/me", RoleMiddleware(domain.RoleTrainer), userHandler.DeleteMe)
			trainersGroup.GET("/byuid/:uid", userHandler.GetTrainerByUID)
			trainersGroup.GET("/byemail/:email", userHandler.GetByEmail)
		}

		mappingGroup := protected.Group("/trainer-member-mapping")
		{
			mappingGroup.POST("/request", mappingHandler.RequestMapping)
			mappingGroup.PATCH("/:id/status", mappingHandler.RespondToMapping)
			// :id carries the member uid here, see UpdateSessions.
			mappingGroup.PATCH("/:id/update-sessions", RoleMiddleware(domain.RoleTrainer), mappingHandler.UpdateSessions)
			mappingGroup.GET("/:other_uid/sessions", mappingHandler.GetRemainingSessions)
			mappingGroup.DELETE("/:other_uid", mappingHandler.DeleteMapping)
		}

		protected.GET("/my-mappings", mappingHandler.ListMyMappings)
		protected.GET("/check-trainer-member-mapping/:trainer_uid/:member_uid",
			RoleMiddleware(domain.RoleTrainer), mappingHandler.CheckMapping)
		protected.GET("/trainer/connected-members/:member_uid",
			RoleMiddleware(domain.RoleTrainer), mappingHandler.GetConnectedMember)
	}
}

// SetupWorkoutRoutes wires the session, quest and catalog endpoints.
func SetupWorkoutRoutes(
	router *gin.Engine,
	jwtSecret string,
	m *metrics.Metrics,
	workoutService service.WorkoutService,
) {
	setupCommon(router, m)

	workoutHandler := NewWorkoutHandler(workoutService)

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		sessionsGroup := protected.Group("/sessions")
		{
			sessionsGroup.POST("", workoutHandler.CreateSession)
			sessionsGroup.POST("/:id/save", workoutHandler.SaveSession)
			sessionsGroup.GET("/member/:uid", workoutHandler.ListMemberSessions)
			sessionsGroup.GET("/detail/:id", workoutHandler.GetSessionDetail)
		}

		questsGroup := protected.Group("/quests")
		{
			questsGroup.POST("", RoleMiddleware(domain.RoleTrainer), workoutHandler.CreateQuest)
			questsGroup.GET("", workoutHandler.ListQuests)
			questsGroup.GET("/member/:member_uid", workoutHandler.ListQuestsForMember)
			questsGroup.GET("/oldest-not-started", RoleMiddleware(domain.RoleMember), workoutHandler.GetOldestNotStartedQuest)
			questsGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), workoutHandler.DeleteQuest)
			questsGroup.POST("/expire/:member_uid", workoutHandler.ExpireQuests)
		}

		workoutsGroup := protected.Group("/workouts")
		{
			workoutsGroup.GET("/search", workoutHandler.SearchWorkouts)
			workoutsGroup.GET("/by-part", workoutHandler.GetWorkoutsByPart)
			workoutsGroup.GET("/name/:key", workoutHandler.GetWorkoutName)
			workoutsGroup.GET("/records/:key", workoutHandler.GetWorkoutRecords)
		}

		protected.GET("/session-counts/:member_uid", workoutHandler.GetSessionCounts)
		protected.GET("/last-session-update/:uid", workoutHandler.GetLastSessionUpdate)
	}
}

// SetupStatsRoutes wires the aggregator endpoints.
func SetupStatsRoutes(
	router *gin.Engine,
	jwtSecret string,
	m *metrics.Metrics,
	statsService service.StatsService,
) {
	setupCommon(router, m)

	statsHandler := NewStatsHandler(statsService)

	protected := router.Group("/api/v1/stats")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/last-updated", statsHandler.GetLastUpdated)
		protected.GET("/weekly-progress", statsHandler.GetWeeklyProgress)
	}
}
