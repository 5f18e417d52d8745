package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"rentora_backend/internal/controller"
	"rentora_backend/internal/middleware"
	"rentora_backend/internal/model"
	"rentora_backend/pkg/config"
	"rentora_backend/pkg/cron"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/email"
	"rentora_backend/pkg/lifecycle"
	"rentora_backend/pkg/seed"
	"rentora_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Public Routes
	api.Get("/listings", controller.ListAvailableListings)
	api.Get("/listings/:id<int>", controller.GetListing)
	api.Get("/packages", controller.ListPackageTiers)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)

	listings := protected.Group("/listings")
	listings.Post("/", controller.CreateListing)
	listings.Get("/my", controller.ListMyListings)
	listings.Get("/my/:id<int>", controller.GetMyListing)
	listings.Post("/:id<int>/renew", controller.RenewListing)
	listings.Delete("/:id<int>", middleware.CheckListingOwnership(), controller.DeleteListing)
	listings.Post("/:listing_id<int>/images", controller.UploadListingImage)
	listings.Delete("/images/:image_id<int>", controller.DeleteListingImage)

	payments := protected.Group("/payments")
	payments.Get("/my", controller.ListMyPayments)
	payments.Patch("/:id<int>/complete", controller.CompletePayment)
	payments.Patch("/:id<int>/cancel", controller.CancelPayment)
	payments.Post("/:id<int>/checkout-session", controller.CreateCheckoutSession)

	// Admin Routes
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.Put("/listings/:id<int>/status", controller.ModerateListing)
	admin.Post("/sweep", controller.RunExpirySweep)
	admin.Post("/packages", controller.CreatePackageTier)
	admin.Put("/packages/:id<int>", controller.UpdatePackageTier)
	admin.Patch("/payments/:id<int>/refund", controller.RefundPayment)

	// Stripe webhook
	api.Post("/webhook", controller.HandleStripeWebhook)
}

func main() {
	cfg := config.Load()

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey); err != nil {
			log.Printf("Could not initialize email service: %v", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, email notifications disabled")
	}

	if err := storage.InitStorage(); err != nil {
		log.Printf("Could not initialize S3 storage, image uploads disabled: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.DatabaseURL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.PackageTier{},
		&model.Listing{},
		&model.ListingImage{},
		&model.PackageApplication{},
		&model.Payment{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedPackageTiers(database.GetDB())

	store := lifecycle.NewStore(database.GetDB())
	machine := lifecycle.NewMachine(store)
	ledger := lifecycle.NewLedger(store, machine)
	processor := lifecycle.NewProcessor(store, ledger, machine)
	sweeper := lifecycle.NewSweeper(store, machine)

	controller.InitLifecycle(store, machine, ledger, processor, sweeper)
	cron.InitListingExpiryCron(sweeper, cfg.Sweep.Schedule)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	// stop the sweep and drain in-flight requests on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		cron.StopListingExpiryCron()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
