// Package wire provides dependency injection for the auditplus application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/auditplus/internal/adapters/cli"
	"github.com/example/auditplus/internal/adapters/sqlite"
	"github.com/example/auditplus/internal/app"
	"github.com/example/auditplus/internal/config"
	"github.com/example/auditplus/internal/db"
	"github.com/example/auditplus/internal/httpapi"
	"github.com/example/auditplus/internal/httpapi/handlers"
	"github.com/example/auditplus/internal/httpapi/middleware"
	"github.com/example/auditplus/internal/metrics"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/version"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()

	database *sql.DB
	services handlers.Services
	once     sync.Once
)

// Configure sets the configuration and logger used when services are first
// built. It must be called before any getter.
func Configure(c *config.Config, l *zap.Logger) {
	cfg = c
	if l != nil {
		logger = l
	}
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	return logger
}

// Config returns the loaded configuration without opening the database.
func Config() *config.Config {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load configuration", zap.Error(err))
		}
		cfg = loaded
	}
	return cfg
}

// initServices opens the database and builds every repository and service.
// This is called once via sync.Once.
func initServices() {
	Config()

	var err error
	database, err = db.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	if err := db.SeedDefaults(database, cfg.Database.SeedDemo); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	// Repository adapters (secondary ports)
	userRepo := sqlite.NewUserRepository(database)
	catalogRepo := sqlite.NewCatalogRepository(database)
	weightRepo := sqlite.NewWeightRepository(database)
	universeRepo := sqlite.NewUniverseRepository(database)
	attachmentRepo := sqlite.NewAttachmentRepository(database)
	planRepo := sqlite.NewPlanRepository(database)
	planProjectRepo := sqlite.NewPlanProjectRepository(database)
	assignmentRepo := sqlite.NewAssignmentRepository(database)
	findingRepo := sqlite.NewFindingRepository(database)
	evaluationRepo := sqlite.NewEvaluationRepository(database)
	logRepo := sqlite.NewAuditLogRepository(database)

	activity := app.NewActivity(sqlite.NewAuditLogWriter(logRepo), logger)
	var clock app.Clock

	// Services (primary ports implementation)
	findings := app.NewFindingService(findingRepo, planProjectRepo, userRepo, catalogRepo, attachmentRepo, activity, logger, clock)
	evaluations := app.NewEvaluationService(universeRepo, evaluationRepo, weightRepo, planProjectRepo, findingRepo, activity, clock)
	services = handlers.Services{
		Users:       app.NewUserService(userRepo, activity),
		Catalogs:    app.NewCatalogService(catalogRepo, activity),
		Weights:     app.NewWeightService(weightRepo, evaluationRepo, activity),
		Universe:    app.NewUniverseService(universeRepo, catalogRepo, attachmentRepo, activity),
		Plans:       app.NewPlanService(planRepo, planProjectRepo, universeRepo, findingRepo, userRepo, assignmentRepo, activity, clock),
		Findings:    findings,
		Evaluations: evaluations,
		Dashboard:   app.NewDashboardService(findings, evaluations, findingRepo, planProjectRepo, universeRepo),
		AuditLog:    app.NewAuditLogService(logRepo),
		Reports:     app.NewReportService(universeRepo, planRepo, planProjectRepo, findingRepo, userRepo, evaluations),
	}
}

// Close releases the database connection if it was opened.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// Services returns every primary port.
func Services() handlers.Services {
	once.Do(initServices)
	return services
}

// UserService returns the singleton UserService instance.
func UserService() primary.UserService {
	once.Do(initServices)
	return services.Users
}

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return services.Catalogs
}

// WeightService returns the singleton WeightService instance.
func WeightService() primary.WeightService {
	once.Do(initServices)
	return services.Weights
}

// AuditLogService returns the singleton AuditLogService instance.
func AuditLogService() primary.AuditLogService {
	once.Do(initServices)
	return services.AuditLog
}

// ReportService returns the singleton ReportService instance.
func ReportService() primary.ReportService {
	once.Do(initServices)
	return services.Reports
}

// HTTPHandler builds the JSON API router over the singleton services.
func HTTPHandler() http.Handler {
	once.Do(initServices)
	metrics.Register(version.Version, version.ShortCommit())
	return httpapi.NewRouter(httpapi.RouterDeps{
		Handlers:       handlers.New(services, logger, cfg.HTTP.MaxUploadBytes),
		Auth:           middleware.NewAuth(services.Users),
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.WriteTimeout,
	})
}

// UniverseAdapter returns a new UniverseAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func UniverseAdapter() *cliadapter.UniverseAdapter {
	return UniverseAdapterWithOutput(os.Stdout)
}

// UniverseAdapterWithOutput returns a new UniverseAdapter writing to the given output.
func UniverseAdapterWithOutput(out io.Writer) *cliadapter.UniverseAdapter {
	once.Do(initServices)
	return cliadapter.NewUniverseAdapter(services.Universe, out)
}

// PlanAdapter returns a new PlanAdapter writing to stdout.
func PlanAdapter() *cliadapter.PlanAdapter {
	once.Do(initServices)
	return cliadapter.NewPlanAdapter(services.Plans, os.Stdout)
}

// FindingAdapter returns a new FindingAdapter writing to stdout.
func FindingAdapter() *cliadapter.FindingAdapter {
	once.Do(initServices)
	return cliadapter.NewFindingAdapter(services.Findings, os.Stdout)
}

// EvaluationAdapter returns a new EvaluationAdapter writing to stdout.
func EvaluationAdapter() *cliadapter.EvaluationAdapter {
	once.Do(initServices)
	return cliadapter.NewEvaluationAdapter(services.Evaluations, services.Dashboard, os.Stdout)
}
