package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/http/handlers"
	"github.com/pulse-crm/backend/internal/middleware"
	"github.com/pulse-crm/backend/internal/rbac"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Contacts    *handlers.ContactHandler
	Groups      *handlers.GroupHandler
	Campaigns   *handlers.CampaignHandler
	Newsletters *handlers.CampaignHandler
	Templates   *handlers.TemplateHandler
	Schedules   *handlers.ScheduleHandler
	Pipeline    *handlers.PipelineHandler
	Tracking    *handlers.TrackingHandler
	Preferences *handlers.PreferenceHandler
	WS          *handlers.WSHub // optional
}

// SetupRouter mounts every route. rdb may be nil, which disables rate limiting.
func SetupRouter(app *fiber.App, cfg *config.Config, log *zap.Logger, rdb *redis.Client, h Handlers) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	limited := middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute)

	// Auth (public)
	api.Post("/auth/register", limited, h.Auth.Register)
	api.Post("/auth/login", limited, h.Auth.Login)

	// Mail links (public). The pixel is never rate limited.
	api.Get("/track-open", h.Tracking.TrackOpen)
	api.Get("/unsubscribe", limited, h.Preferences.GetPreferences)
	api.Post("/unsubscribe", limited, h.Preferences.UpdatePreferences)
	api.Get("/unsub", limited, h.Preferences.LegacyUnsubscribe)
	api.Post("/unsub", limited, h.Preferences.LegacyUnsubscribe)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/auth/verify", h.Auth.Verify)
	protected.Post("/auth/reset-password", h.Auth.ResetPassword)

	// Users (admin)
	users := protected.Group("/users", middleware.RequirePermission(rbac.PermManageUsers))
	users.Get("", h.Users.ListUsers)
	users.Get("/:id", h.Users.GetUser)
	users.Put("/:id", h.Users.UpdateUser)
	users.Delete("/:id", h.Users.DeleteUser)

	// Contacts
	contacts := protected.Group("/contacts", middleware.RequirePermission(rbac.PermManageContacts))
	contacts.Post("", h.Contacts.CreateContact)
	contacts.Get("", h.Contacts.ListContacts)
	contacts.Get("/:id", h.Contacts.GetContact)
	contacts.Put("/:id", h.Contacts.UpdateContact)
	contacts.Delete("/:id", h.Contacts.DeleteContact)

	groups := protected.Group("/contact-groups", middleware.RequirePermission(rbac.PermManageContacts))
	groups.Post("", h.Groups.CreateGroup)
	groups.Get("", h.Groups.ListGroups)
	groups.Get("/:id", h.Groups.GetGroup)
	groups.Put("/:id", h.Groups.UpdateGroup)
	groups.Delete("/:id", h.Groups.DeleteGroup)

	// Campaigns and newsletters
	content := middleware.RequirePermission(rbac.PermManageContent)
	for prefix, ch := range map[string]*handlers.CampaignHandler{
		"/campaigns":   h.Campaigns,
		"/newsletters": h.Newsletters,
	} {
		g := protected.Group(prefix, content)
		g.Post("", ch.CreateCampaign)
		g.Get("", ch.ListCampaigns)
		g.Get("/:id", ch.GetCampaign)
		g.Put("/:id", ch.UpdateCampaign)
		g.Delete("/:id", ch.DeleteCampaign)
		g.Post("/:id/duplicate", ch.DuplicateCampaign)
		g.Get("/:id/stats", ch.GetStats)
		g.Get("/:id/activity", ch.GetActivity)
	}

	templates := protected.Group("/templates", content)
	templates.Post("", h.Templates.CreateTemplate)
	templates.Get("", h.Templates.ListTemplates)
	templates.Get("/:id", h.Templates.GetTemplate)
	templates.Put("/:id", h.Templates.UpdateTemplate)
	templates.Delete("/:id", h.Templates.DeleteTemplate)

	// Scheduling
	manageSchedules := middleware.RequirePermission(rbac.PermManageSchedules)
	protected.Post("/schedule", manageSchedules, h.Schedules.CreateSchedule)
	protected.Get("/email-schedule", manageSchedules, h.Schedules.ListSchedules)
	protected.Get("/email-schedule/:id", manageSchedules, h.Schedules.GetSchedule)
	protected.Put("/email-schedule/:id", manageSchedules, h.Schedules.UpdateSchedule)
	protected.Delete("/email-schedule/:id", manageSchedules, h.Schedules.DeleteSchedule)

	// Pipeline
	run := middleware.RequirePermission(rbac.PermRunPipeline)
	protected.Post("/process-scheduled", run, h.Pipeline.ProcessScheduled)
	protected.Get("/email-queue", middleware.RequirePermission(rbac.PermViewPipeline), h.Pipeline.QueueStats)
	protected.Post("/email-queue", run, h.Pipeline.ProcessQueue)

	// WebSocket
	if h.WS != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(h.WS.HandleWS))
	}
}
