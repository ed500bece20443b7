package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/erpmaroc/paie-backend-go/internal/config"
	appHTTP "github.com/erpmaroc/paie-backend-go/internal/handler/http"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/cron"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/database"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/email"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/jwt"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/storage"
	"github.com/erpmaroc/paie-backend-go/internal/repository/postgresql"
	documentService "github.com/erpmaroc/paie-backend-go/internal/service/document"
	paieService "github.com/erpmaroc/paie-backend-go/internal/service/paie"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	documentRepo := postgresql.NewDocumentRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	txManager := postgresql.NewTxManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	previewCache := documentService.NewInMemoryPreviewCache()
	jobQueue := documentService.NewInMemoryJobQueue(cfg.Workflow.JobQueueCapacity)

	docService := documentService.NewService(
		txManager,
		documentRepo,
		auditRepo,
		employeeRepo,
		previewCache,
		jobQueue,
		documentService.Config{
			BatchChunkSize: cfg.Workflow.BatchChunkSize,
			MaxInFlight:    cfg.Workflow.MaxInFlight,
		},
	)
	if cfg.Workflow.WorkingHoursRule {
		docService.RegisterRule(documentService.NewWorkingHoursRule(
			cfg.Workflow.WorkingHoursStart,
			cfg.Workflow.WorkingHoursEnd,
		))
	}
	docService.RegisterNotificationHandler(documentService.NewEmailNotificationHandler(emailService, employeeRepo))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := documentService.NewWorker(docService, documentRepo, fileStorage, jobQueue, cfg.Workflow.RenderWorkers)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal("Render worker stopped:", err)
		}
	}()

	calculator := paieService.NewCalculator()
	paieSvc := paieService.NewService(calculator, employeeRepo, docService)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("audit-retention", cfg.Workflow.RetentionSweepInterval, cron.AuditRetentionJob(auditRepo))
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(JWTService)
	paieHandler := appHTTP.NewPaieHandler(paieSvc)
	documentHandler := appHTTP.NewDocumentHandler(docService)

	router := appHTTP.NewRouter(
		JWTService,
		authHandler,
		paieHandler,
		documentHandler,
		cfg.App.FrontendURL,
		cfg.App.Env,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
