package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-booking/internal/controllers"
	"equipment-booking/pkg/constants"
	"equipment-booking/pkg/middleware"
)

// Controllers - все контроллеры приложения для регистрации маршрутов.
type Controllers struct {
	Auth       *controllers.AuthController
	Department *controllers.DepartmentController
	Category   *controllers.EquipmentCategoryController
	Equipment  *controllers.EquipmentController
	Booking    *controllers.BookingController
	Access     *controllers.DepartmentAccessController
	User       *controllers.UserController
	Report     *controllers.ReportController
	Telegram   *controllers.TelegramController
}

func InitRouter(e *echo.Echo, ctrls Controllers, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	api := e.Group("/api/v1")

	// Вебхук Telegram аутентифицируется секретом, а не JWT.
	api.POST("/telegram/webhook", ctrls.Telegram.Webhook)

	runAuthRouter(api, ctrls.Auth, authMW)

	secured := api.Group("", authMW.Auth)
	runDepartmentRouter(secured, ctrls.Department, logger)
	runEquipmentCategoryRouter(secured, ctrls.Category, logger)
	runEquipmentRouter(secured, ctrls.Equipment, logger)
	runBookingRouter(secured, ctrls.Booking)
	runDepartmentAccessRouter(secured, ctrls.Access, logger)
	runUserRouter(secured, ctrls.User, logger)
	runReportRouter(secured, ctrls.Report, logger)
}

func runAuthRouter(g *echo.Group, ctrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	auth := g.Group("/auth")
	auth.POST("/login", ctrl.Login)
	auth.POST("/refresh", ctrl.Refresh)
	auth.GET("/profile", ctrl.Profile, authMW.Auth)
}

func runDepartmentRouter(g *echo.Group, ctrl *controllers.DepartmentController, logger *zap.Logger) {
	departments := g.Group("/departments")
	departments.GET("", ctrl.GetDepartments)
	departments.GET("/:id", ctrl.FindDepartment)

	adminOnly := middleware.RequireRoles(logger, constants.RoleAdmin)
	departments.POST("", ctrl.CreateDepartment, adminOnly)
	departments.PUT("/:id", ctrl.UpdateDepartment, adminOnly)
	departments.DELETE("/:id", ctrl.DeleteDepartment, adminOnly)
}

func runEquipmentCategoryRouter(g *echo.Group, ctrl *controllers.EquipmentCategoryController, logger *zap.Logger) {
	categories := g.Group("/equipment-categories")
	categories.GET("", ctrl.GetCategories)
	categories.GET("/:id", ctrl.FindCategory)

	adminOnly := middleware.RequireRoles(logger, constants.RoleAdmin)
	categories.POST("", ctrl.CreateCategory, adminOnly)
	categories.PUT("/:id", ctrl.UpdateCategory, adminOnly)
	categories.DELETE("/:id", ctrl.DeleteCategory, adminOnly)
}

func runEquipmentRouter(g *echo.Group, ctrl *controllers.EquipmentController, logger *zap.Logger) {
	equipments := g.Group("/equipments")
	equipments.GET("", ctrl.GetEquipments)
	equipments.GET("/:id", ctrl.FindEquipment)

	manage := middleware.RequireRoles(logger, constants.RoleAdmin, constants.RoleModerator)
	equipments.POST("", ctrl.CreateEquipment, manage)
	equipments.PUT("/:id", ctrl.UpdateEquipment, manage)
	equipments.DELETE("/:id", ctrl.DeleteEquipment, middleware.RequireRoles(logger, constants.RoleAdmin))
}

func runBookingRouter(g *echo.Group, ctrl *controllers.BookingController) {
	bookings := g.Group("/bookings")
	bookings.GET("", ctrl.GetBookings)
	bookings.GET("/my", ctrl.GetMyBookings)
	bookings.GET("/pending", ctrl.GetPendingBookings)
	bookings.GET("/:id", ctrl.FindBooking)
	bookings.POST("", ctrl.CreateBooking)

	// Гранты на управление проверяются в сервисе по подразделению
	// оборудования, а не ролью на уровне маршрута.
	bookings.POST("/:id/approve", ctrl.ApproveBooking)
	bookings.POST("/:id/reject", ctrl.RejectBooking)
	bookings.POST("/:id/cancel", ctrl.CancelBooking)

	g.GET("/equipments/:id/availability", ctrl.GetAvailability)
}

func runDepartmentAccessRouter(g *echo.Group, ctrl *controllers.DepartmentAccessController, logger *zap.Logger) {
	manage := middleware.RequireRoles(logger, constants.RoleAdmin, constants.RoleModerator)
	accesses := g.Group("/department-accesses", manage)
	accesses.GET("", ctrl.GetAccesses)
	accesses.POST("", ctrl.GrantAccess)
	accesses.PUT("/:id", ctrl.UpdateAccess)
	accesses.DELETE("/:id", ctrl.RevokeAccess)
}

func runUserRouter(g *echo.Group, ctrl *controllers.UserController, logger *zap.Logger) {
	adminOnly := middleware.RequireRoles(logger, constants.RoleAdmin)
	users := g.Group("/users", adminOnly)
	users.GET("", ctrl.GetUsers)
	users.GET("/:id", ctrl.FindUser)
	users.POST("", ctrl.CreateUser)
	users.PUT("/:id", ctrl.UpdateUser)
	users.DELETE("/:id", ctrl.DeleteUser)
}

func runReportRouter(g *echo.Group, ctrl *controllers.ReportController, logger *zap.Logger) {
	manage := middleware.RequireRoles(logger, constants.RoleAdmin, constants.RoleModerator)
	g.GET("/reports/bookings", ctrl.BookingsReport, manage)
}
