package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/middleware"
	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/internal/service"
	"github.com/kidscholars/ksis-api/pkg/config"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Applications  *ApplicationHandler
	Documents     *DocumentHandler
	Users         *UserHandler
	Students      *StudentHandler
	Attendance    *AttendanceHandler
	Activities    *ActivityHandler
	Fees          *FeeHandler
	Notifications *NotificationHandler
	Academic      *AcademicHandler
	Dashboard     *DashboardHandler
	Reports       *ReportHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the full API surface on the engine. Public
// admission and gallery endpoints are unauthenticated; everything else
// sits behind JWT with per-group role checks.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, auth *service.AuthService, users *repository.UserRepository, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.Static("/gallery/files", cfg.Gallery.StorageDir)

	api := r.Group(cfg.APIPrefix)

	public := api.Group("/public", middleware.OptionalJWT(auth))
	{
		public.POST("/application", h.Applications.Submit)
		public.POST("/application/status", h.Applications.CheckStatus)
		public.POST("/application/resolve-tracking", h.Applications.ResolveTracking)
		public.GET("/application/track/:token", h.Applications.Track)
		public.POST("/application/track/:token/submit-documents", h.Applications.SubmitDocuments)
		public.POST("/application/track/:token/submit-payment-receipt", h.Applications.SubmitPaymentReceipt)
		public.GET("/gallery", h.Documents.ListGallery)
	}

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	secured := api.Group("", middleware.JWT(auth))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	staff := middleware.RequireRoles(models.StaffRoles...)
	admin := middleware.RequireRoles(models.AdminRoles...)
	teaching := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher)
	finance := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleFinanceManager)
	parent := middleware.RequireRoles(models.RoleParent)
	guardianOrStaff := middleware.RequireRoles(
		models.RoleSuperAdmin,
		models.RoleSchoolAdmin,
		models.RoleAdmissionOfficer,
		models.RoleTeacher,
		models.RoleParent,
	)
	guardianOrFinance := middleware.RequireRoles(
		models.RoleSuperAdmin,
		models.RoleSchoolAdmin,
		models.RoleFinanceManager,
		models.RoleParent,
	)

	applications := secured.Group("/applications", staff)
	{
		applications.GET("", h.Applications.List)
		applications.GET("/:id", h.Applications.Get)
		applications.PATCH("/:id", middleware.Audit(users, models.AuditActionStatusUpdate, "applications"), h.Applications.Update)
		applications.POST("/:id/admit", middleware.Audit(users, models.AuditActionAdmit, "applications"), h.Applications.Admit)
		applications.GET("/:id/documents", h.Documents.ListDocuments)
		applications.POST("/:id/documents", h.Documents.AddDocument)
	}
	secured.POST("/documents/:id/review", staff, h.Documents.ReviewDocument)

	userRoutes := secured.Group("/users")
	{
		userRoutes.POST("", admin, h.Users.Create)
		userRoutes.GET("", admin, h.Users.List)
		userRoutes.POST("/me/password", h.Users.ChangePassword)
		userRoutes.GET("/:id", middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleSchoolAdmin), middleware.SelfAccess), h.Users.Get)
		userRoutes.PATCH("/:id", admin, h.Users.Update)
		userRoutes.POST("/:id/reset-password", admin, h.Users.ResetPassword)
		userRoutes.DELETE("/:id", admin, h.Users.Delete)
	}

	students := secured.Group("/students")
	{
		students.GET("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleAdmissionOfficer, models.RoleTeacher), h.Students.List)
		students.GET("/my-children", parent, h.Students.MyChildren)
		students.GET("/:id", guardianOrStaff, h.Students.Get)
		students.DELETE("/:id", admin, h.Students.Deactivate)
	}

	attendance := secured.Group("/attendance")
	{
		attendance.POST("", teaching, h.Attendance.Mark)
		attendance.POST("/bulk", teaching, h.Attendance.MarkBulk)
		attendance.GET("/register", teaching, h.Attendance.Register)
		attendance.GET("/student/:id", guardianOrStaff, h.Attendance.History)
		attendance.GET("/student/:id/summary", guardianOrStaff, h.Attendance.Summary)
	}

	activities := secured.Group("/activities")
	{
		activities.POST("", teaching, h.Activities.Record)
		activities.GET("/student/:id", guardianOrStaff, h.Activities.History)
		activities.GET("/student/:id/date", guardianOrStaff, h.Activities.ForDate)
	}

	fees := secured.Group("/fees")
	{
		fees.PUT("/structures", finance, h.Fees.UpsertStructure)
		fees.GET("/structures", h.Fees.ListStructures)
		fees.POST("/payments", finance, h.Fees.RecordPayment)
		fees.POST("/payments/order", guardianOrFinance, h.Fees.CreateOrder)
		fees.POST("/payments/verify", guardianOrFinance, h.Fees.VerifyPayment)
		fees.GET("/student/:id/payments", guardianOrFinance, h.Fees.PaymentsForStudent)
		fees.GET("/student/:id/summary", guardianOrFinance, h.Fees.Summary)
	}

	notifications := secured.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/read-all", h.Notifications.MarkAllRead)
		notifications.POST("/broadcast", admin, h.Notifications.Broadcast)
		notifications.POST("/:id/read", h.Notifications.MarkRead)
	}

	academic := secured.Group("/academic")
	{
		academic.POST("/years", admin, h.Academic.CreateYear)
		academic.GET("/years", staff, h.Academic.ListYears)
		academic.POST("/years/:id/activate", admin, h.Academic.ActivateYear)
		academic.POST("/sections", admin, h.Academic.CreateSection)
		academic.GET("/sections", staff, h.Academic.ListSections)
		academic.POST("/assignments", admin, h.Academic.AssignTeacher)
		academic.GET("/assignments/mine", teaching, h.Academic.MyAssignments)
		academic.GET("/assignments/mine/students", teaching, h.Academic.MyStudents)
		academic.DELETE("/assignments/:id", admin, h.Academic.RemoveAssignment)
	}

	secured.POST("/gallery", admin, h.Documents.AddGalleryImage)
	secured.DELETE("/gallery/:id", admin, h.Documents.DeleteGalleryImage)

	secured.GET("/dashboard/stats", staff, h.Dashboard.Stats)
	secured.GET("/dashboard/system", admin, h.Dashboard.System)

	reports := secured.Group("/reports", staff)
	{
		reports.GET("/applications", h.Reports.ApplicationRegister)
		reports.GET("/students", h.Reports.StudentRoster)
	}
}
