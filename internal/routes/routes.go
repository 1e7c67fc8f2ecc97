package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/config"
	"github.com/example/messmate/internal/handlers"
	"github.com/example/messmate/internal/middleware"
	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/utils"
)

// ErrorHandler renders handler errors as the uniform failure envelope
// expected by the clients.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// Register wires up all HTTP routes. Collaborators are constructed
// once at startup and passed in; nothing reaches for a singleton.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, otps otp.Store, mailer handlers.Mailer, images handlers.ImageStore) {
	studentAuth := handlers.NewStudentAuthHandler(db, cfg, otps, mailer)
	vendorAuth := handlers.NewVendorAuthHandler(db, cfg, otps, mailer)
	applicationHandler := handlers.NewApplicationHandler(db, images)
	adminHandler := handlers.NewAdminHandler(db, mailer)
	reviewHandler := handlers.NewReviewHandler(db)
	menuHandler := handlers.NewMenuHandler(db)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes
	studentAuthGroup := api.Group("/auth/student")
	studentAuthGroup.Post("/send-otp", studentAuth.SendOtp)
	studentAuthGroup.Post("/verify-otp", studentAuth.VerifyOtp)
	studentAuthGroup.Post("/login", studentAuth.Login)

	vendorAuthGroup := api.Group("/auth/vendor")
	vendorAuthGroup.Post("/send-otp", vendorAuth.SendOtp)
	vendorAuthGroup.Post("/verify-otp", vendorAuth.VerifyOtp)
	vendorAuthGroup.Post("/register", vendorAuth.Register)
	vendorAuthGroup.Post("/login", vendorAuth.Login)

	// Vendor applications
	api.Post("/applications", applicationHandler.Submit)
	api.Get("/applications/status", applicationHandler.Status)

	// Public browsing
	api.Get("/vendors", menuHandler.ListVendors)
	api.Get("/vendors/:email/menu", menuHandler.CurrentMenu)
	api.Get("/vendors/:email/reviews", reviewHandler.ListByVendor)

	authRequired := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RequireRole(utils.RoleAdmin)
	studentOnly := middleware.RequireRole(utils.RoleStudent)
	vendorOnly := middleware.RequireRole(utils.RoleVendor)

	// Admin routes
	admin := api.Group("/admin", authRequired, adminOnly)
	admin.Get("/applications", adminHandler.ListApplications)
	admin.Get("/applications/:id", adminHandler.GetApplication)
	admin.Post("/applications/:id/approve", adminHandler.Approve)
	admin.Post("/applications/:id/reject", adminHandler.Reject)
	admin.Get("/stats", adminHandler.DashboardStats)

	// Student routes
	api.Post("/reviews", authRequired, studentOnly, reviewHandler.Upsert)
	api.Delete("/reviews", authRequired, studentOnly, reviewHandler.Remove)
	api.Get("/profile", authRequired, studentOnly, profileHandler.GetProfile)
	api.Put("/profile", authRequired, studentOnly, profileHandler.UpdateProfile)

	// Vendor routes
	vendor := api.Group("/vendor", authRequired, vendorOnly)
	vendor.Post("/menu", menuHandler.Publish)
	vendor.Get("/reviews", reviewHandler.VendorOwnReviews)
}
