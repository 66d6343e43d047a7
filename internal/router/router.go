package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillroute/skillroute-api/internal/config"
	"github.com/skillroute/skillroute-api/internal/handler"
	"github.com/skillroute/skillroute-api/internal/middleware"
	"github.com/skillroute/skillroute-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LessonHandler       *handler.LessonHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	AdminLessonHandler  *handler.AdminLessonHandler
	AdminStudentHandler *handler.AdminStudentHandler
	StatsHandler        *handler.StatsHandler
	TutorHandler        *handler.TutorHandler
	SeedHandler         *handler.SeedHandler
	JWTMiddleware       fiber.Handler
	TutorRateLimit      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOrAdmin := middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin)

	// Lesson track: unlock listing, progress and the override unlock.
	if deps.LessonHandler != nil {
		lessons := api.Group("/lessons", jwtMiddleware)
		deps.LessonHandler.Register(lessons)
	}

	// Assignments and quiz submissions.
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
		deps.AssignmentHandler.RegisterAdmin(assignments.Group("", teacherOrAdmin))

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assignments)
			deps.SubmissionHandler.RegisterAssignmentGrading(assignments.Group("", teacherOrAdmin))
			grading := api.Group("/submissions", jwtMiddleware, teacherOrAdmin)
			deps.SubmissionHandler.RegisterGrading(grading)
		}
	}

	// Lesson, student and group management.
	if deps.AdminLessonHandler != nil {
		adminLessons := api.Group("/admin/lessons", jwtMiddleware, teacherOrAdmin)
		deps.AdminLessonHandler.Register(adminLessons)
	}
	if deps.AdminStudentHandler != nil {
		adminStudents := api.Group("/admin/students", jwtMiddleware, teacherOrAdmin)
		deps.AdminStudentHandler.Register(adminStudents)

		adminGroups := api.Group("/admin/groups", jwtMiddleware, teacherOrAdmin)
		deps.AdminStudentHandler.RegisterGroups(adminGroups)
	}

	// Progress statistics.
	if deps.StatsHandler != nil {
		stats := api.Group("/stats", jwtMiddleware)
		deps.StatsHandler.Register(stats)
		deps.StatsHandler.RegisterAdmin(stats.Group("", teacherOrAdmin))
	}

	// AI tutor, rate limited per student.
	if deps.TutorHandler != nil {
		tutor := api.Group("/tutor", jwtMiddleware)
		if deps.TutorRateLimit != nil {
			tutor.Use(deps.TutorRateLimit)
		}
		deps.TutorHandler.Register(tutor)
	}

	// Seeding tooling, gated by config and token inside the service.
	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
