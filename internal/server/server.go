// Package server expose l'analyse en HTTP (gin) : page d'upload, /upload, /models.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patrickprogramme/scriptratio/internal/analysis"
	"github.com/patrickprogramme/scriptratio/internal/assets"
	"github.com/patrickprogramme/scriptratio/internal/config"
	"github.com/patrickprogramme/scriptratio/internal/fsutil"
	"github.com/patrickprogramme/scriptratio/internal/logger"
	"github.com/patrickprogramme/scriptratio/internal/transcribe"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Models donne accès aux moteurs de transcription (voir transcribe.Registry).
type Models interface {
	Lookup(name string) (transcribe.Backend, error)
	Names() []string
	Default() string
}

// Analyzer transforme un résultat de transcription en rapport.
type Analyzer interface {
	Analyze(ctx context.Context, res transcribe.Result, modelName string) (analysis.Report, error)
}

type Options struct {
	Addr           string
	UploadDir      string
	KeepUploads    bool
	MaxUploadBytes int64
	CORSOrigins    []string
}

// OptionsFromConfig extrait les réglages serveur de la configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:           cfg.ListenAddr(),
		UploadDir:      cfg.UploadDir,
		KeepUploads:    cfg.KeepUploads,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}
}

type Server struct {
	opts     Options
	log      *logger.Logger
	models   Models
	analyzer Analyzer
	page     *Page
	engine   *gin.Engine
}

// New prépare le dossier d'upload et le routeur. models et analyzer sont partagés
// en lecture par toutes les requêtes.
func New(opts Options, models Models, analyzer Analyzer, log *logger.Logger) (*Server, error) {
	if models == nil || analyzer == nil {
		return nil, errors.New("server: models et analyzer sont requis")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if err := fsutil.EnsureDir(opts.UploadDir); err != nil {
		return nil, fmt.Errorf("dossier d'upload : %w", err)
	}
	page, err := NewPage(assets.Embedded, assets.DefaultTemplatePaths)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		log:      log.With("component", "server"),
		models:   models,
		analyzer: analyzer,
		page:     page,
	}
	s.engine = s.router()
	return s, nil
}

// Handler retourne le routeur (utile pour httptest).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run écoute jusqu'à l'annulation de ctx puis arrête proprement le serveur.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serveur démarré", "addr", s.opts.Addr, "models", s.models.Names())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("arrêt du serveur")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("arrêt du serveur : %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
