package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusrec/achievement-api/api/swagger"
	"github.com/campusrec/achievement-api/internal/handler"
	"github.com/campusrec/achievement-api/internal/middleware"
	"github.com/campusrec/achievement-api/internal/repository"
	"github.com/campusrec/achievement-api/internal/service"
	"github.com/campusrec/achievement-api/pkg/cache"
	"github.com/campusrec/achievement-api/pkg/config"
	"github.com/campusrec/achievement-api/pkg/database"
	"github.com/campusrec/achievement-api/pkg/logger"
	corsmiddleware "github.com/campusrec/achievement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusrec/achievement-api/pkg/middleware/requestid"
	"github.com/campusrec/achievement-api/pkg/storage"
)

// @title Achievement Tracker API
// @version 1.0.0
// @description Role-scoped student achievement submission and verification
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	// Redis is optional; reports simply skip caching when it is absent.
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report caching disabled")
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Reports.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	structureRepo := repository.NewAcademicStructureRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	resolver := service.NewHierarchyResolver(departmentRepo, programRepo, structureRepo, divisionRepo, batchRepo)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "achievement-api",
	})
	userSvc := service.NewUserService(userRepo, resolver, nil, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, userRepo, nil, logr)
	programSvc := service.NewProgramService(programRepo, departmentRepo, userRepo, nil, logr)
	structureSvc := service.NewAcademicStructureService(structureRepo, programRepo, userRepo, nil, logr)
	divisionSvc := service.NewDivisionService(divisionRepo, structureRepo, userRepo, nil, logr)
	batchSvc := service.NewBatchService(batchRepo, divisionRepo, userRepo, nil, logr)
	achievementSvc := service.NewAchievementService(achievementRepo, userRepo, cacheSvc, metricsSvc, nil, logr, cfg.Achievements.HODScopePolicy)
	reportSvc := service.NewReportService(achievementRepo, userRepo, cacheSvc, logr, cfg.Achievements.HODScopePolicy)
	uploadSvc := service.NewUploadService(store, userRepo, logr, cfg.Uploads)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:              handler.NewAuthHandler(authSvc),
		User:              handler.NewUserHandler(userSvc),
		Department:        handler.NewDepartmentHandler(departmentSvc),
		Program:           handler.NewProgramHandler(programSvc),
		AcademicStructure: handler.NewAcademicStructureHandler(structureSvc),
		Division:          handler.NewDivisionHandler(divisionSvc),
		Batch:             handler.NewBatchHandler(batchSvc),
		Achievement:       handler.NewAchievementHandler(achievementSvc),
		Report:            handler.NewReportHandler(reportSvc),
		Upload:            handler.NewUploadHandler(uploadSvc),
		Metrics:           handler.NewMetricsHandler(metricsSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "hod_scope_policy", cfg.Achievements.HODScopePolicy)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
