package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/config"
	"github.com/fisikaku/fisikaku-api/internal/handler"
	"github.com/fisikaku/fisikaku-api/internal/middleware"
	"github.com/fisikaku/fisikaku-api/internal/observability"
)

// Answer submission is the one write endpoint students can hammer, so it
// carries a per-user limiter on top of the JWT guard.
const (
	submitRateLimitMax    = 10
	submitRateLimitWindow = time.Minute
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler       *handler.CourseHandler
	MaterialHandler     *handler.MaterialHandler
	AssessmentHandler   *handler.AssessmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	GradingHandler      *handler.GradingHandler
	ResultHandler       *handler.ResultHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
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

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.MaterialHandler != nil {
		materials := api.Group("/materials", jwtMiddleware)
		deps.MaterialHandler.Register(materials)

		contents := api.Group("/contents", jwtMiddleware)
		deps.MaterialHandler.RegisterContents(contents)
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", jwtMiddleware)
		deps.AssessmentHandler.Register(assessments)

		questions := api.Group("/questions", jwtMiddleware, middleware.RequireRole(auth.RoleTeacher))
		deps.AssessmentHandler.RegisterQuestions(questions)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assessments,
				middleware.RateLimit("submission_submit", submitRateLimitMax, submitRateLimitWindow))
		}
		if deps.ResultHandler != nil {
			deps.ResultHandler.RegisterAssessmentList(assessments)
		}
	}

	if deps.ResultHandler != nil || deps.GradingHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		if deps.ResultHandler != nil {
			deps.ResultHandler.Register(submissions)
		}
		if deps.GradingHandler != nil {
			deps.GradingHandler.Register(submissions, middleware.RequireRole(auth.RoleTeacher))
		}
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
