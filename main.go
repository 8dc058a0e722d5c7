// @title           Export Quote API
// @version         1.0
// @description     Quote request backend - product catalog, unit conversion pricing and quote submissions.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/middleware"
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origins)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "User-Agent",
		"Cache-Control", "Referer", "X-Forwarded-For", "X-Real-IP",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

// composeSessionMaxIdle is how long an untouched compose session survives
// before the daily sweep drops it.
const composeSessionMaxIdle = 24 * time.Hour

func main() {
	db := storage.InitDB()
	gdb := storage.InitGormDB()

	if err := storage.EnsureQuoteTables(db); err != nil {
		log.Fatalf("Failed to ensure quote tables: %v", err)
	}
	if err := storage.SeedDefaultMeasures(gdb); err != nil {
		log.Fatalf("Failed to seed measures: %v", err)
	}
	if lastID, err := storage.LastQuoteID(db); err == nil {
		log.Printf("Quote sequence at %s", repository.FormatQuoteNumber(lastID))
	}

	measures, err := storage.ListMeasures(gdb)
	if err != nil {
		log.Fatalf("Failed to load measure catalog: %v", err)
	}
	pricing := services.NewPricingService(measures)
	composer := services.NewComposerService(pricing)
	limiter := middleware.NewRateLimiterFromEnv()
	emailSvc := services.NewEmailService(db)

	// Daily maintenance: drop stale limiter buckets and compose sessions,
	// retry quote emails that failed on first delivery.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err = c.AddFunc("30 2 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		swept := limiter.Sweep()
		dropped := composer.SweepStale(composeSessionMaxIdle)
		log.Printf("Maintenance: %d limiter buckets swept, %d compose sessions dropped", swept, dropped)

		err := emailSvc.RetryFailedQuoteEmails(
			func(id int) (*models.Quote, error) { return storage.GetQuoteByID(db, id) },
			func(id int, sentAt time.Time) error {
				return storage.UpdateQuoteEmailStatus(db, id, models.EmailStatusSent, &sentAt)
			},
		)
		if err != nil {
			log.Printf("Email retry pass failed: %v", err)
		}

		log.Println("Daily cron cycle completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. MEASURES ====================
	r.POST("/api/measures", handlers.CreateMeasure(gdb, pricing))
	r.GET("/api/measures", handlers.GetMeasures(pricing))
	r.GET("/api/measures/:id", handlers.GetMeasureByID(gdb))
	r.PUT("/api/measures/:id", handlers.UpdateMeasure(gdb, pricing))
	r.DELETE("/api/measures/:id", handlers.DeleteMeasure(gdb, pricing))

	// ==================== 2. PRODUCTS & PRICING ====================
	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProductByID(db))
	r.GET("/api/products/:id/price", handlers.GetProductPrice(db, pricing))
	r.GET("/api/products/:id/measures", handlers.GetAvailableMeasures(db, pricing))

	// ==================== 3. COUNTRIES ====================
	r.POST("/api/countries", handlers.CreateCountry(db))
	r.GET("/api/countries", handlers.GetCountries(db))
	r.GET("/api/countries/:id", handlers.GetCountryByID(db))

	// ==================== 4. QUOTE COMPOSITION ====================
	r.POST("/api/compose/session", handlers.CreateComposeSession(composer))
	r.GET("/api/compose/:token", handlers.GetComposeSession(composer))
	r.POST("/api/compose/:token/products", handlers.AddComposeProduct(db, composer))
	r.DELETE("/api/compose/:token/products/:product_id", handlers.RemoveComposeProduct(composer))
	r.PUT("/api/compose/:token/products/:product_id/quantity", handlers.SetComposeQuantity(composer))
	r.PUT("/api/compose/:token/products/:product_id/measure", handlers.SetComposeMeasure(composer))
	r.PUT("/api/compose/:token/products/:product_id/notes", handlers.SetComposeNotes(composer))

	// ==================== 5. QUOTES ====================
	r.POST("/api/quotes", handlers.SubmitQuote(db, gdb, pricing, limiter, emailSvc))
	r.GET("/api/quotes", handlers.GetQuotes(db))
	r.GET("/api/quotes/search", handlers.SearchQuotes(db))
	r.GET("/api/quotes/export", handlers.ExportQuotesExcel(db))
	r.GET("/api/quotes/:id", handlers.GetQuoteByID(db))
	r.PUT("/api/quotes/:id/status", handlers.UpdateQuoteStatus(db))
	r.GET("/api/quotes/:id/pdf", handlers.GenerateQuotePDF(db))

	// ==================== 6. ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetQuoteActivityLogs(db))
	r.GET("/api/logs/search", handlers.SearchQuoteActivityLogs(db))

	// ==================== 7. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
