package web

import (
	"context"
	"net/http"
	"strconv"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TripSyncer runs a manual checkin import for one trip
type TripSyncer interface {
	SyncTrip(ctx context.Context, tripID uint) (*entity.ScanLog, error)
}

// Server exposes the operational HTTP surface: health, metrics, the
// scan log viewer and the manual checkin sync trigger.
type Server struct {
	echo        *echo.Echo
	checkinSync TripSyncer
	scanLogRepo repository.ScanLogRepository
	logger      logger.Logger
	version     string
}

// NewServer creates the operational HTTP server
func NewServer(checkinSync TripSyncer, scanLogRepo repository.ScanLogRepository, log logger.Logger, version string) *Server {
	s := &Server{
		checkinSync: checkinSync,
		scanLogRepo: scanLogRepo,
		logger:      log,
		version:     version,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/scanlogs/:job", s.listScanLogs)
	e.POST("/trips/:id/sync-checkins", s.syncTripCheckins)

	s.echo = e
	return s
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) listScanLogs(c echo.Context) error {
	job := c.Param("job")

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	logs, err := s.scanLogRepo.ListRecent(c.Request().Context(), job, limit)
	if err != nil {
		s.logger.Error("Failed to list scan logs", "job", job, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list scan logs")
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) syncTripCheckins(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}

	log, err := s.checkinSync.SyncTrip(c.Request().Context(), uint(id))
	if err != nil {
		s.logger.Error("Manual checkin sync failed", "tripID", id, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"seen":       log.Seen,
		"created":    log.Created,
		"updated":    log.Updated,
		"duplicates": log.Duplicates,
		"failed":     log.Failed,
	})
}
