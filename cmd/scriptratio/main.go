package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/patrickprogramme/scriptratio/internal/app"
	"github.com/patrickprogramme/scriptratio/internal/assets"
	"github.com/patrickprogramme/scriptratio/internal/bootstrap"
	"github.com/patrickprogramme/scriptratio/internal/config"
	"github.com/patrickprogramme/scriptratio/internal/logger"
)

const defaultConfigName = "scriptratio.yaml"

func main() {
	flags := parseFlags()
	if err := flags.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	// déterminer binDir : la config par défaut vit à côté de l'exécutable
	binDir := "."
	if exePath, err := os.Executable(); err != nil {
		log.Printf("impossible de déterminer le chemin de l'executable: %v", err)
	} else {
		binDir = filepath.Dir(exePath)
	}
	if flags.ConfigPath == "" {
		flags.ConfigPath = filepath.Join(binDir, defaultConfigName)
	}

	// s'assurer que le fichier config existe, si non on le crée
	if created, err := bootstrap.EnsureConfigPresent(flags.ConfigPath, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		log.Printf("erreur: EnsureConfigPresent: %v", err)
	} else if created {
		log.Printf("info: fichier de configuration par défaut créé : %s", flags.ConfigPath)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if warnings, err := cfg.ValidateWhisperPresence(); err != nil {
		log.Fatalf("config whisper: %v", err)
	} else {
		for _, w := range warnings {
			log.Printf("warning: %s", w)
		}
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()
	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// root context qui s'annule sur SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, lg, flags)
	if err := a.Run(ctx); err != nil {
		if errors.Is(err, app.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		lg.Error("échec", "error", err)
		lg.Sync()
		os.Exit(1)
	}
}

func parseFlags() *app.CLIFlags {
	f := &app.CLIFlags{}
	flag.StringVar(&f.ConfigPath, "config", "", "chemin du fichier de configuration (défaut : scriptratio.yaml à côté du binaire)")
	flag.BoolVar(&f.Serve, "serve", false, "lancer le serveur HTTP")
	flag.StringVar(&f.Audio, "audio", "", "fichier audio à transcrire et analyser")
	flag.StringVar(&f.Segments, "segments", "", "JSON de segments whisper à analyser sans transcription")
	flag.StringVar(&f.Model, "model", "", "modèle de transcription (défaut : default_model de la config)")
	flag.StringVar(&f.OutDir, "out", "", "dossier où écrire transcript.txt, chart.png et report.json")
	flag.BoolVar(&f.Copy, "copy", false, "copier le transcript formaté dans le presse-papier")
	flag.StringVar(&f.Addr, "addr", "", "adresse d'écoute (remplace server.addr et PORT)")
	flag.Parse()
	return f
}
