package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickzone-pickup/internal/config"
	appmw "quickzone-pickup/internal/middleware"
	"quickzone-pickup/internal/modules/missions"
	"quickzone-pickup/internal/modules/parcels"
	"quickzone-pickup/internal/modules/scans"
	"quickzone-pickup/pkg/securecode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}

	missionRepo := missions.NewRepository(pool)
	missionSvc := missions.NewService(missionRepo, securecode.NewGenerator(), cfg.RefusalReleasePolicy)
	missionHandler := missions.NewHandler(missionSvc)

	scanRepo := scans.NewRepository(pool)
	scanSvc := scans.NewService(scanRepo)
	scanHandler := scans.NewHandler(scanSvc)

	parcelRepo := parcels.NewRepository(pool)
	parcelSvc := parcels.NewService(parcelRepo)
	parcelHandler := parcels.NewHandler(parcelSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))

	api := e.Group("/api", appmw.JWT(cfg.JWTSecret))

	m := api.Group("/missions")
	m.POST("", missionHandler.CreateMissions, appmw.RequireRole("commercial", "agent"))
	m.GET("", missionHandler.ListMissions)
	m.GET("/:missionId", missionHandler.GetMission)
	m.PATCH("/:missionId/status", missionHandler.UpdateStatus, appmw.RequireRole("driver", "chef_agence"))
	m.GET("/:missionId/security-code", missionHandler.GetSecurityCode, appmw.RequireRole("driver", "agent"))
	m.POST("/:missionId/completion-code", missionHandler.GetCompletionCode, appmw.RequireRole("driver", "chef_agence"))
	m.POST("/:missionId/scans", scanHandler.ScanOne, appmw.RequireRole("driver"))
	m.POST("/:missionId/scans/batch", scanHandler.ScanBatch, appmw.RequireRole("driver"))
	m.DELETE("/:missionId", missionHandler.DeleteMission, appmw.RequireRole())

	api.POST("/agencies/:agencyId/scans", scanHandler.WarehouseScan, appmw.RequireRole("chef_agence"))

	p := api.Group("/parcels")
	p.GET("/pickup-candidates", parcelHandler.ListPickupCandidates, appmw.RequireRole("commercial", "agent"))
	p.GET("/:parcelId", parcelHandler.GetParcel)
	p.POST("/:parcelId/release", parcelHandler.ReleaseHeldParcel, appmw.RequireRole("agent", "chef_agence"))

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
