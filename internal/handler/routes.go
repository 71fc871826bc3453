package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-calendar-api/internal/middleware"
)

// Handlers bundles the endpoint groups mounted by RegisterRoutes. Backups
// may be nil when scheduled backups are disabled.
type Handlers struct {
	Events    *EventHandler
	Calendar  *CalendarHandler
	Reminders *ReminderHandler
	Assistant *AssistantHandler
	Auth      *AuthHandler
	Backups   *BackupHandler
}

// Guards are the middleware chains protecting mutating routes.
type Guards struct {
	Authenticated []gin.HandlerFunc
	Editor        []gin.HandlerFunc
	Admin         []gin.HandlerFunc
}

// RegisterRoutes mounts the calendar API on api. Reads are public; changes
// require an editor token and are audited on l.
func RegisterRoutes(api gin.IRouter, h Handlers, l *zap.Logger, guards Guards) {
	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", chain(guards.Authenticated, h.Auth.Me)...)

	events := api.Group("/events")
	events.GET("", h.Events.List)
	events.GET("/conflicts", h.Events.Conflicts)
	events.GET("/counts", h.Events.Counts)
	events.GET("/history", h.Events.History)
	events.GET("/export", h.Events.Export)
	events.GET("/:id", h.Events.Get)

	editable := events.Group("", guards.Editor...)
	editable.POST("", middleware.Audit(l, "event.create"), h.Events.Create)
	editable.PATCH("/:id", middleware.Audit(l, "event.update"), h.Events.Update)
	editable.DELETE("/:id", middleware.Audit(l, "event.delete"), h.Events.Delete)
	editable.POST("/undo", middleware.Audit(l, "history.undo"), h.Events.Undo)
	editable.POST("/redo", middleware.Audit(l, "history.redo"), h.Events.Redo)
	editable.POST("/import", middleware.Audit(l, "event.import"), h.Events.Import)

	calendar := api.Group("/calendar")
	calendar.GET("/month", h.Calendar.Month)
	calendar.GET("/week", h.Calendar.Week)
	calendar.GET("/day", h.Calendar.Day)

	api.GET("/reminders", h.Reminders.Upcoming)
	api.GET("/assistant/context", h.Assistant.Context)

	if h.Backups != nil {
		backups := api.Group("/backups", guards.Admin...)
		backups.GET("", h.Backups.List)
		backups.POST("", middleware.Audit(l, "backup.create"), h.Backups.Create)
	}
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	return append(append(out, guards...), h)
}
