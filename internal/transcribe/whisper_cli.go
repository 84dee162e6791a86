package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultProbeTimeout = 10 * time.Second

// WhisperCLIConfig représente les flags passés à la commande whisper.
type WhisperCLIConfig struct {
	Model    string // turbo, large-v2, large-v3...
	Device   string // cpu, cuda ; vide => choix de whisper
	Language string // vide => détection automatique
	FP16     bool   // false => --fp16 False (obligatoire sur CPU)
}

// BuildArgs construit la liste d'arguments pour transcrire audioPath vers outDir.
func (c *WhisperCLIConfig) BuildArgs(audioPath, outDir string) []string {
	args := make([]string, 0, 14)
	args = append(args, audioPath)
	args = append(args, "--model", c.Model)
	args = append(args, "--output_format", "json")
	args = append(args, "--output_dir", outDir)
	if c.Device != "" {
		args = append(args, "--device", c.Device)
	}
	if c.Language != "" {
		args = append(args, "--language", c.Language)
	}
	if c.FP16 {
		args = append(args, "--fp16", "True")
	} else {
		args = append(args, "--fp16", "False")
	}
	args = append(args, "--verbose", "False")
	return args
}

// WhisperCLI exécute le binaire openai-whisper.
type WhisperCLI struct {
	name    string // nom du modèle exposé
	Exe     string // nom du binaire (whisper / whisper.exe)
	Path    string // chemin résolu ; vide => recherche dans PATH
	Config  WhisperCLIConfig
	Timeout time.Duration // 0 => pas de limite
}

// NewWhisperCLI construit une instance. resolvedPath peut être vide.
func NewWhisperCLI(name, exe, resolvedPath string, cfg WhisperCLIConfig) *WhisperCLI {
	return &WhisperCLI{
		name:   name,
		Exe:    exe,
		Path:   resolvedPath,
		Config: cfg,
	}
}

func (w *WhisperCLI) Name() string { return w.name }

// executable retourne le chemin effectif à lancer.
func (w *WhisperCLI) executable() (string, error) {
	if w.Path != "" {
		return w.Path, nil
	}
	p, err := exec.LookPath(w.Exe)
	if err != nil {
		return "", fmt.Errorf("%s introuvable dans PATH : %w", w.Exe, err)
	}
	return p, nil
}

// CheckBinary vérifie que le binaire existe et n'est pas un répertoire.
func (w *WhisperCLI) CheckBinary() error {
	if w == nil {
		return fmt.Errorf("whisper non initialisé")
	}
	exe, err := w.executable()
	if err != nil {
		return err
	}
	info, err := os.Stat(exe)
	if err != nil {
		return fmt.Errorf("whisper introuvable (%s) à l'emplacement spécifié : %w", exe, err)
	}
	if info.IsDir() {
		return fmt.Errorf("le chemin spécifié pour whisper est un répertoire, pas un fichier exécutable : %s", exe)
	}
	return nil
}

// Probe vérifie le binaire puis lance `whisper --help` (whisper n'a pas de --version).
func (w *WhisperCLI) Probe(ctx context.Context) error {
	if err := w.CheckBinary(); err != nil {
		return err
	}
	exe, _ := w.executable()

	pctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(pctx, exe, "--help").CombinedOutput()
	if err != nil {
		return fmt.Errorf("whisper --help a échoué : %w, output: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Transcribe lance whisper dans un dossier temporaire puis lit <base>.json.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	exe, err := w.executable()
	if err != nil {
		return Result{}, err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return Result{}, fmt.Errorf("fichier audio illisible : %w", err)
	}

	outDir, err := os.MkdirTemp("", "scriptratio-whisper-*")
	if err != nil {
		return Result{}, fmt.Errorf("création du dossier temporaire : %w", err)
	}
	defer os.RemoveAll(outDir)

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	args := w.Config.BuildArgs(audioPath, outDir)
	out, err := exec.CommandContext(ctx, exe, args...).CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("whisper interrompu : %w", ctxErr)
		}
		return Result{}, fmt.Errorf("whisper a échoué : %w, output: %s", err, tail(string(out), 2000))
	}

	jsonPath := filepath.Join(outDir, OutputName(audioPath))
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("whisper n'a produit aucun fichier %s, output: %s", filepath.Base(jsonPath), tail(string(out), 2000))
		}
		return Result{}, fmt.Errorf("lecture de %s : %w", jsonPath, err)
	}
	return ParseWhisperJSONBytes(b)
}

// OutputName retourne le nom du fichier json écrit par whisper pour audioPath.
func OutputName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// tail garde la fin d'une sortie trop longue (les erreurs python sont en bas).
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return "…" + s[i:]
}
