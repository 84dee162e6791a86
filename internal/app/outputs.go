package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickprogramme/scriptratio/internal/analysis"
	"github.com/patrickprogramme/scriptratio/internal/fsutil"
	"github.com/patrickprogramme/scriptratio/internal/transcribe"
	"github.com/patrickprogramme/scriptratio/internal/transcript"
	"github.com/patrickprogramme/scriptratio/pkg/model"
)

// nom de modèle affiché quand les segments viennent d'un fichier JSON
const importedModelName = "imported"

// noms de base des fichiers écrits par SaveOutputs
const (
	transcriptBase = "transcript"
	chartBase      = "chart"
	reportBase     = "report"
)

// SaveOutputs écrit transcript.txt, chart.png et report.json dans outDir.
// Chaque fichier est écrit atomiquement ; retourne les chemins écrits.
func SaveOutputs(outDir string, tr transcript.Transcript, report analysis.Report) ([]string, error) {
	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	var written []string

	// transcript horodaté
	name, err := transcript.Filename(transcriptBase, model.FormatTXT)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(outDir, name)
	if err := tr.SaveAs(p, model.FormatTXT); err != nil {
		return written, err
	}
	written = append(written, p)

	// graphique
	name, err = transcript.Filename(chartBase, model.FormatPNG)
	if err != nil {
		return written, err
	}
	p = filepath.Join(outDir, name)
	if err := fsutil.WriteFileAtomic(p, report.PNG, filePerm); err != nil {
		return written, fmt.Errorf("write %s: %w", name, err)
	}
	written = append(written, p)

	// rapport complet (mêmes champs que la réponse HTTP)
	name, err = transcript.Filename(reportBase, model.FormatJSON)
	if err != nil {
		return written, err
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return written, fmt.Errorf("marshal report: %w", err)
	}
	p = filepath.Join(outDir, name)
	if err := fsutil.WriteFileAtomic(p, append(b, '\n'), filePerm); err != nil {
		return written, fmt.Errorf("write %s: %w", name, err)
	}
	written = append(written, p)

	return written, nil
}

// LoadSegments lit un JSON de transcription existant : sortie whisper
// ({text, language, segments}) ou simple tableau de segments [{start, end, text}].
func LoadSegments(path string) (transcribe.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("lecture de %s : %w", path, err)
	}
	trimmed := bytesTrimLeft(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var segs []model.Segment
		if err := json.Unmarshal(trimmed, &segs); err != nil {
			return transcribe.Result{}, fmt.Errorf("segments %s : %w", path, err)
		}
		if err := model.CheckSegments(segs); err != nil {
			return transcribe.Result{}, fmt.Errorf("segments %s : %w", path, err)
		}
		return transcribe.Result{Segments: segs}, nil
	}
	res, err := transcribe.ParseWhisperJSONBytes(trimmed)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("segments %s : %w", path, err)
	}
	return res, nil
}

// bytesTrimLeft retire les blancs et un éventuel BOM UTF-8 en tête.
func bytesTrimLeft(b []byte) []byte {
	for len(b) > 0 {
		switch {
		case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
			b = b[3:]
		case b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r':
			b = b[1:]
		default:
			return b
		}
	}
	return b
}
