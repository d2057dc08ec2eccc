package main

import (
	"log"
	"os"
	"time"

	"receets-pos/internal/database"
	"receets-pos/internal/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()
	r := gin.Default()

	// CORS for the dashboard frontend
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/register", handlers.Register)

	// Auth lives in front of this service; callers arrive with resolved
	// merchant/location/customer identifiers.
	api := r.Group("/api")
	{
		api.PUT("/merchants/:id/settings", handlers.UpdateMerchantSettings)
		api.POST("/locations", handlers.CreateLocation)
		api.POST("/customers", handlers.CreateCustomer)

		// Sale ledger + eligibility
		api.POST("/sales", handlers.CreateSale)
		api.GET("/sales", handlers.GetEligibleSales)
		api.PATCH("/sales/:id", handlers.AmendSale)

		// Location QR tokens
		api.POST("/qrcode", handlers.IssueQRCode)
		api.GET("/qrcode", handlers.GetQRCode)
		api.POST("/qrcode/decode", handlers.DecodeQRCode)
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("🚀 Server starting on " + baseURL)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
