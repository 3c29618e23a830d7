package main

import (
	"edumitra/config"
	"edumitra/database"
	authRoutes "edumitra/routers/authRoutes"
	courseRoutes "edumitra/routers/courseRoutes"
	enrollmentRoutes "edumitra/routers/enrollmentRoutes"
	membershipRoutes "edumitra/routers/membershipRoutes"
	paymentRoutes "edumitra/routers/paymentRoutes"
	progressRoutes "edumitra/routers/progressRoutes"
	"edumitra/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	utils.InitPaymentGateway()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	// Uploaded student files (profile images, submissions)
	app.Static("/uploads", "./uploads")

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	membershipRoutes.SetupMembershipRoutes(app)
	progressRoutes.SetupProgressRoutes(app)

	// Daily expiry sweep, reminders and payment reconciliation.
	utils.InitializeExpiryScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
