package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tmc/europepmc"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve captured articles over HTTP (read-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ledger, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ledger.Close()

			logger := europepmc.NewLogger(cfg.Logging.Level).With("ledger", ledger.Path())
			srv := &http.Server{Addr: addr, Handler: newServer(ledger).router}
			return listenAndServe(cmd.Context(), srv, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// listenAndServe runs srv until ctx is done or the listener fails.
func listenAndServe(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Close()
		case <-done:
		}
	}()

	logger.Info("serving", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}

type server struct {
	ledger *europepmc.Ledger
	router *gin.Engine
}

func newServer(ledger *europepmc.Ledger) *server {
	s := &server{
		ledger: ledger,
		router: gin.Default(),
	}
	s.setupRoutes()
	return s
}

func (s *server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/v1/articles", s.handleArticles)
	s.router.GET("/v1/articles/:pmcid", s.handleArticle)
	s.router.GET("/v1/methods", s.handleMethods)
	s.router.GET("/v1/stats", s.handleStats)
}

func (s *server) handleHealth(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *server) handleArticles(c *gin.Context) {
	ids, err := s.ledger.KnownIDs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"pmcids": ids, "count": len(ids)})
}

func (s *server) handleArticle(c *gin.Context) {
	rec, err := s.ledger.Get(c.Request.Context(), c.Param("pmcid"))
	if errors.Is(err, europepmc.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *server) handleMethods(c *gin.Context) {
	sections, err := s.ledger.MethodSections(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("format") == europepmc.FormatTSV {
		c.Header("Content-Type", "text/tab-separated-values; charset=utf-8")
		c.Status(http.StatusOK)
		if err := europepmc.WriteMethodsTSV(c.Writer, sections); err != nil {
			c.Error(err)
		}
		return
	}
	if sections == nil {
		sections = []europepmc.MethodSection{}
	}
	c.JSON(http.StatusOK, sections)
}

func (s *server) handleStats(c *gin.Context) {
	stats, err := s.ledger.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
