package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusrec/achievement-api/internal/middleware"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/internal/service"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Auth              *AuthHandler
	User              *UserHandler
	Department        *DepartmentHandler
	Program           *ProgramHandler
	AcademicStructure *AcademicStructureHandler
	Division          *DivisionHandler
	Batch             *BatchHandler
	Achievement       *AchievementHandler
	Report            *ReportHandler
	Upload            *UploadHandler
	Metrics           *MetricsHandler
}

// Register mounts every route group under the API prefix. Role gates here are
// coarse; ownership and hierarchy scope are enforced in the services.
func Register(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", middleware.JWT(auth), h.Auth.Logout)
		authGroup.POST("/change-password", middleware.JWT(auth), h.Auth.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	users := protected.Group("/users")
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), h.User.List)
		users.POST("", middleware.RequireRoles(models.RoleAdmin), h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Deactivate)
	}

	// The whole hierarchy surface, reads included, is admin territory.
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	departments := protected.Group("/departments", adminOnly)
	{
		departments.GET("", h.Department.List)
		departments.GET("/:id", h.Department.Get)
		departments.POST("", h.Department.Create)
		departments.PUT("/:id", h.Department.Update)
		departments.DELETE("/:id", h.Department.Delete)
	}

	programs := protected.Group("/programs", adminOnly)
	{
		programs.GET("", h.Program.List)
		programs.GET("/:id", h.Program.Get)
		programs.POST("", h.Program.Create)
		programs.PUT("/:id", h.Program.Update)
		programs.DELETE("/:id", h.Program.Delete)
	}

	structures := protected.Group("/academic-structures", adminOnly)
	{
		structures.GET("", h.AcademicStructure.List)
		structures.GET("/:id", h.AcademicStructure.Get)
		structures.POST("", h.AcademicStructure.Create)
		structures.PUT("/:id", h.AcademicStructure.Update)
		structures.DELETE("/:id", h.AcademicStructure.Delete)
	}

	divisions := protected.Group("/divisions", adminOnly)
	{
		divisions.GET("", h.Division.List)
		divisions.GET("/:id", h.Division.Get)
		divisions.POST("", h.Division.Create)
		divisions.PUT("/:id", h.Division.Update)
		divisions.DELETE("/:id", h.Division.Delete)
	}

	batches := protected.Group("/batches", adminOnly)
	{
		batches.GET("", h.Batch.List)
		batches.GET("/:id", h.Batch.Get)
		batches.POST("", h.Batch.Create)
		batches.PUT("/:id", h.Batch.Update)
		batches.DELETE("/:id", h.Batch.Delete)
	}

	reviewers := middleware.RequireRoles(models.RoleAdmin, models.RoleHOD, models.RoleClassAdvisor)

	achievements := protected.Group("/achievements")
	{
		achievements.POST("", middleware.RequireRoles(models.RoleStudent), h.Achievement.Create)
		achievements.GET("/mine", middleware.RequireRoles(models.RoleStudent), h.Achievement.ListMine)
		achievements.GET("", reviewers, h.Achievement.List)
		achievements.GET("/:id", h.Achievement.Get)
		achievements.PUT("/:id", middleware.RequireRoles(models.RoleStudent), h.Achievement.Update)
		achievements.DELETE("/:id", middleware.RequireRoles(models.RoleStudent), h.Achievement.Delete)
		achievements.POST("/:id/verify", reviewers, h.Achievement.Verify)
		achievements.POST("/:id/reject", reviewers, h.Achievement.Reject)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/achievements", reviewers, h.Report.Generate)
	}

	uploads := protected.Group("/uploads")
	{
		uploads.POST("/certificate", middleware.RequireRoles(models.RoleStudent), h.Upload.UploadCertificate)
		uploads.POST("/photo", middleware.RequireRoles(models.RoleStudent), h.Upload.UploadPhoto)
	}

	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics.Prometheus)
		protected.GET("/metrics/snapshot", adminOnly, h.Metrics.Snapshot)
	}
}
