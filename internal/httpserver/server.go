package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/investview/invest_tracker_api/config"
	"github.com/investview/invest_tracker_api/internal/transport/rest"
	customMW "github.com/investview/invest_tracker_api/internal/transport/rest/middleware"
)

type Server struct {
	cfg  *config.Config
	srv  *http.Server
	ctrl *rest.Controller
}

func New(cfg *config.Config, ctrl *rest.Controller) *Server {
	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}

	s := &Server{cfg: cfg, ctrl: ctrl}

	router := gin.New()
	router.Use(gin.Recovery(), cors.Default(), customMW.Logger())

	s.setupRoutes(router)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", customMW.Auth())

	api.GET("/portfolio", s.ctrl.GetPortfolio)
	api.GET("/portfolio/report", s.ctrl.GetPortfolioReport)

	api.POST("/lots", s.ctrl.CreateLot)
	api.PUT("/lots/:id", s.ctrl.UpdateLot)
	api.POST("/lots/:id/sell", s.ctrl.SellLot)
	api.POST("/lots/:id/reopen", s.ctrl.ReopenLot)
	api.DELETE("/lots/:id", s.ctrl.DeleteLot)

	api.GET("/lots/:id/dividends", s.ctrl.GetDividends)
	api.POST("/lots/:id/dividends", s.ctrl.CreateDividend)
	api.DELETE("/dividends/:id", s.ctrl.DeleteDividend)

	api.GET("/wallets", s.ctrl.GetWallets)
	api.POST("/wallets", s.ctrl.CreateWallet)
	api.PUT("/wallets/:id", s.ctrl.RenameWallet)
	api.DELETE("/wallets/:id", s.ctrl.DeleteWallet)
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", slog.String("err", err.Error()))
		}
	}()
	slog.Info("http server started", slog.Int("port", s.cfg.HTTP.Port))
}

func (s *Server) Stop() {
	slog.Info("start stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}

	slog.Info("http server stopped")
}
