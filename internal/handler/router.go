package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler.
type Handlers struct {
	Classes     *ClassHandler
	Trainers    *TrainerHandler
	Members     *MemberHandler
	Enrollments *EnrollmentHandler
	Assignments *AssignmentHandler
	Hours       *HoursHandler
}

// Register mounts the API routes on group.
func (h Handlers) Register(group *gin.RouterGroup) {
	classes := group.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.PUT("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)
	classes.GET("/:id/enrollments", h.Classes.Enrollments)

	trainers := group.Group("/trainers")
	trainers.GET("", h.Trainers.List)
	trainers.POST("", h.Trainers.Create)
	trainers.GET("/:id", h.Trainers.Get)
	trainers.PUT("/:id", h.Trainers.Update)
	trainers.DELETE("/:id", h.Trainers.Delete)

	group.GET("/members", h.Members.List)
	group.GET("/members/:id", h.Members.Get)

	group.POST("/enrollments", h.Enrollments.Signup)
	group.GET("/availability", h.Enrollments.Availability)

	group.GET("/assignments", h.Assignments.List)
	group.POST("/assignments", h.Assignments.Assign)
	group.DELETE("/assignments", h.Assignments.Unassign)

	group.GET("/hours", h.Hours.Summary)
	group.GET("/hours/export", h.Hours.Export)
}
