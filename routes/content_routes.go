package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterContentRoutes sets up the marketing-site content: blog posts,
// quotes, trainer profiles and shop products. Reads are public, writes are
// admin-only.
func RegisterContentRoutes(e *echo.Echo, db *mongo.Client) {
	blogController := controllers.NewBlogController(db)
	quoteController := controllers.NewQuoteController(db)
	trainerController := controllers.NewTrainerController(db)
	productController := controllers.NewProductController(db)

	e.GET("/api/blogs", blogController.GetBlogs)
	e.GET("/api/blogs/:slug", blogController.GetBlog)
	e.GET("/api/quotes", quoteController.GetQuotes)
	e.GET("/api/trainers", trainerController.GetTrainers)
	e.GET("/api/trainers/:id", trainerController.GetTrainer)
	e.GET("/api/products", productController.GetProducts)
	e.GET("/api/products/:id", productController.GetProduct)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	admin.Use(middleware.RequireAdmin())

	admin.GET("/blogs", blogController.GetBlogs)
	admin.POST("/blogs", blogController.CreateBlog)
	admin.PUT("/blogs/:id", blogController.UpdateBlog)
	admin.DELETE("/blogs/:id", blogController.DeleteBlog)

	admin.GET("/quotes", quoteController.GetQuotes)
	admin.POST("/quotes", quoteController.CreateQuote)
	admin.PUT("/quotes/:id", quoteController.UpdateQuote)
	admin.DELETE("/quotes/:id", quoteController.DeleteQuote)

	admin.GET("/trainers", trainerController.GetTrainers)
	admin.POST("/trainers", trainerController.CreateTrainer)
	admin.PUT("/trainers/:id", trainerController.UpdateTrainer)
	admin.DELETE("/trainers/:id", trainerController.DeleteTrainer)

	admin.GET("/products", productController.GetProducts)
	admin.POST("/products", productController.CreateProduct)
	admin.PUT("/products/:id", productController.UpdateProduct)
	admin.DELETE("/products/:id", productController.DeleteProduct)
}
