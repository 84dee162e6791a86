package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/patrickprogramme/scriptratio/internal/analysis"
	"github.com/patrickprogramme/scriptratio/internal/chart"
	"github.com/patrickprogramme/scriptratio/internal/clipboard"
	"github.com/patrickprogramme/scriptratio/internal/config"
	"github.com/patrickprogramme/scriptratio/internal/logger"
	"github.com/patrickprogramme/scriptratio/internal/server"
	"github.com/patrickprogramme/scriptratio/internal/transcribe"
)

const (
	defaultTranscribeTimeout = 2 * time.Hour
	dirPerm                  = 0o755
	filePerm                 = 0o644
)

var ErrUsage = errors.New("usage")

// CLIFlags contient les informations venant des flags de l'app
type CLIFlags struct {
	ConfigPath string
	Serve      bool
	Audio      string
	Segments   string
	Model      string
	OutDir     string
	Copy       bool
	Addr       string
}

// Validate vérifie qu'un seul mode est demandé (serveur, fichier audio ou JSON de segments).
func (f *CLIFlags) Validate() error {
	n := 0
	for _, set := range []bool{f.Serve, f.Audio != "", f.Segments != ""} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return fmt.Errorf("%w: -serve, -audio ou -segments requis", ErrUsage)
	case n > 1:
		return fmt.Errorf("%w: -serve, -audio et -segments sont exclusifs", ErrUsage)
	}
	return nil
}

// Models : accès aux moteurs de transcription (voir transcribe.Registry).
type Models interface {
	Lookup(name string) (transcribe.Backend, error)
	Names() []string
	Default() string
}

// App orchestre les différentes dépendances (config, moteurs, graphique, sorties).
type App struct {
	cfg   *config.Config
	log   *logger.Logger
	flags *CLIFlags

	out    io.Writer           // résumé et messages
	copyFn func(string) error  // presse-papier
	models Models              // nil => registre construit depuis cfg
	render analysis.Renderer   // nil => chart.New(cfg.Chart)
}

// New construit l'application avec les dépendances par défaut.
// Pour les tests, on préférera remplir les champs avec des implémentations factices.
func New(cfg *config.Config, log *logger.Logger, flags *CLIFlags) *App {
	return &App{
		cfg:    cfg,
		log:    log,
		flags:  flags,
		out:    os.Stdout,
		copyFn: clipboard.WriteAll,
	}
}

// Run exécute le mode demandé par les flags.
func (a *App) Run(ctx context.Context) error {
	if err := a.flags.Validate(); err != nil {
		return err
	}

	if a.render == nil {
		r, err := chart.New(chart.Options{Size: a.cfg.Chart.Size, FontPath: a.cfg.Chart.FontPath})
		if err != nil {
			return fmt.Errorf("graphique : %w", err)
		}
		a.render = r
	}
	svc := analysis.NewService(a.render, a.log)

	if a.flags.Segments != "" {
		return a.runSegments(ctx, svc)
	}

	if a.models == nil {
		reg, err := transcribe.NewRegistry(ctx, a.cfg, a.log)
		if err != nil {
			return fmt.Errorf("moteurs de transcription : %w", err)
		}
		defer reg.Close()
		a.models = reg
	}

	if a.flags.Serve {
		return a.runServer(ctx, svc)
	}
	return a.runAudio(ctx, svc)
}

func (a *App) runServer(ctx context.Context, svc *analysis.Service) error {
	opts := server.OptionsFromConfig(a.cfg)
	if a.flags.Addr != "" {
		opts.Addr = a.flags.Addr
	}
	srv, err := server.New(opts, a.models, svc, a.log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func (a *App) runAudio(ctx context.Context, svc *analysis.Service) error {
	name := a.flags.Model
	if name == "" {
		name = a.models.Default()
	}
	backend, err := a.models.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w (disponibles : %v)", err, a.models.Names())
	}

	tctx, cancel := context.WithTimeout(ctx, defaultTranscribeTimeout)
	defer cancel()

	a.log.Info("transcription", "file", a.flags.Audio, "model", name)
	start := time.Now()
	res, err := backend.Transcribe(tctx, a.flags.Audio)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("opération annulée")
		}
		return fmt.Errorf("transcription : %w", err)
	}
	a.log.Info("transcription terminée", "segments", len(res.Segments), "elapsed", time.Since(start).Round(time.Millisecond))

	report, err := svc.Analyze(ctx, res, name)
	if err != nil {
		return err
	}
	return a.emit(res, report)
}

func (a *App) runSegments(ctx context.Context, svc *analysis.Service) error {
	res, err := LoadSegments(a.flags.Segments)
	if err != nil {
		return err
	}
	name := a.flags.Model
	if name == "" {
		name = importedModelName
	}
	report, err := svc.Analyze(ctx, res, name)
	if err != nil {
		return err
	}
	return a.emit(res, report)
}

// emit affiche le résumé puis écrit les sorties demandées.
func (a *App) emit(res transcribe.Result, report analysis.Report) error {
	fmt.Fprint(a.out, report.Summary())

	if a.flags.OutDir != "" {
		paths, err := SaveOutputs(a.flags.OutDir, res.Transcript(), report)
		if err != nil {
			return fmt.Errorf("échec de la sauvegarde : %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(a.out, "écrit : %s\n", p)
		}
	}

	if a.flags.Copy {
		if report.FullSpeechToText == "" {
			a.log.Warn("transcript vide, rien à copier")
			return nil
		}
		if err := a.copyFn(report.FullSpeechToText); err != nil {
			return fmt.Errorf("presse-papier : %w", err)
		}
		fmt.Fprintln(a.out, "Transcript copié dans le presse-papier.")
	}
	return nil
}
