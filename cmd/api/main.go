package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/config"
	appHTTP "github.com/expensahq/expensa-backend-go/internal/handler/http"
	"github.com/expensahq/expensa-backend-go/internal/pkg/currency"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/pkg/email"
	"github.com/expensahq/expensa-backend-go/internal/pkg/jwt"
	"github.com/expensahq/expensa-backend-go/internal/pkg/oauth"
	"github.com/expensahq/expensa-backend-go/internal/pkg/ocr"
	"github.com/expensahq/expensa-backend-go/internal/pkg/storage"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	authService "github.com/expensahq/expensa-backend-go/internal/service/auth"
	companyService "github.com/expensahq/expensa-backend-go/internal/service/company"
	dashboardService "github.com/expensahq/expensa-backend-go/internal/service/dashboard"
	expenseService "github.com/expensahq/expensa-backend-go/internal/service/expense"
	notificationService "github.com/expensahq/expensa-backend-go/internal/service/notification"
	userService "github.com/expensahq/expensa-backend-go/internal/service/user"
	workflowService "github.com/expensahq/expensa-backend-go/internal/service/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	jwtRepo := postgresql.NewJWTRepository(db)
	workflowRepo := postgresql.NewWorkflowRepository(db)
	ruleRepo := postgresql.NewRuleRepository(db)
	expenseRepo := postgresql.NewExpenseRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

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

	var extractor ocr.Extractor
	switch cfg.OCR.Provider {
	case "openai":
		extractor = ocr.NewOpenAIExtractor(cfg.OCR.APIKey, cfg.OCR.Model)
	default:
		extractor = ocr.NewMockExtractor()
	}

	converter := currency.NewConverter(cfg.Currency.BaseURL, cfg.Currency.Timeout)

	authSvc := authService.NewAuthService(db, userRepo, companyRepo, jwtService, jwtRepo)
	companySvc := companyService.NewCompanyService(companyRepo)
	userSvc := userService.NewUserService(userRepo, companyRepo, emailService, cfg.App.FrontendURL)
	workflowSvc := workflowService.NewWorkflowService(db, workflowRepo, ruleRepo, userRepo)
	expenseSvc := expenseService.NewExpenseService(
		db,
		expenseRepo,
		approvalRepo,
		workflowRepo,
		ruleRepo,
		userRepo,
		companyRepo,
		notificationRepo,
		converter,
		fileStorage,
		extractor,
	)
	approvalSvc := expenseService.NewApprovalService(db, expenseRepo, approvalRepo, ruleRepo, userRepo, notificationRepo)
	notificationSvc := notificationService.NewNotificationService(notificationRepo)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc, googleService, cfg.App.FrontendURL)
	companyHandler := appHTTP.NewCompanyHandler(companySvc)
	userHandler := appHTTP.NewUserHandler(userSvc)
	workflowHandler := appHTTP.NewWorkflowHandler(workflowSvc)
	expenseHandler := appHTTP.NewExpenseHandler(expenseSvc)
	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			FrontendURL: cfg.App.FrontendURL,
			Env:         cfg.App.Env,
		},
		jwtService,
		authHandler,
		companyHandler,
		userHandler,
		workflowHandler,
		expenseHandler,
		approvalHandler,
		notificationHandler,
		dashboardHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
