package routes

import (
	"github.com/gin-gonic/gin"

	"veltra_back_end/internal/handlers/admin"
	"veltra_back_end/internal/handlers/product"
	"veltra_back_end/internal/handlers/user"
	"veltra_back_end/internal/middleware"
	"veltra_back_end/internal/models"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Authentification
	auth := api.Group("/auth")
	auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
	auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	auth.POST("/forgot-password", user.ForgotPassword)
	auth.POST("/reset-password", user.ResetPassword)

	// Catalogue produits
	products := api.Group("/products")
	products.GET("", product.GetProducts)
	products.GET("/search", product.SearchProducts)
	products.GET("/:id", product.GetProduct)

	protected := products.Group("")
	protected.Use(middleware.AuthRequired(), middleware.APIRateLimit())
	protected.POST("", product.CreateProduct)
	protected.POST("/sync", product.SyncProducts)
	protected.POST("/:id/images", product.UploadImage)
	protected.PUT("/:id", product.UpdateProduct)
	protected.DELETE("/:id",
		middleware.AuditCriticalActions(models.OpDelete, models.EntityProduct, "Produit supprimé"),
		product.DeleteProduct)

	// Journal d'audit (réservé aux administrateurs)
	logs := api.Group("/logs")
	logs.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	logs.GET("", admin.GetLogs)
	logs.GET("/stats", admin.GetLogStats)
	logs.GET("/timeline", admin.GetLogTimeline)
	logs.GET("/export", admin.ExportLogs)
	logs.DELETE("/cleanup", admin.CleanupLogs)
}
