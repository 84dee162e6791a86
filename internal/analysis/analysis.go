// Package analysis enchaîne formatage, agrégation et graphique pour produire
// le rapport renvoyé au client.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickprogramme/scriptratio/internal/chart"
	"github.com/patrickprogramme/scriptratio/internal/logger"
	"github.com/patrickprogramme/scriptratio/internal/transcribe"
	"github.com/patrickprogramme/scriptratio/internal/transcript"
)

// Renderer dessine le camembert à partir des deux pourcentages.
type Renderer interface {
	Render(chineseRatio, japaneseRatio float64) ([]byte, error)
}

// Report est la réponse JSON de /upload.
type Report struct {
	ChineseRatio     float64 `json:"chinese_ratio"`
	JapaneseRatio    float64 `json:"japanese_ratio"`
	PieChart         string  `json:"pie_chart"` // PNG en base64, sans préfixe data:
	FullSpeechToText string  `json:"full_speech_to_text"`
	SpeechToText     string  `json:"speech_to_text"`
	FullChineseText  string  `json:"full_chinese_text"`
	FullJapaneseText string  `json:"full_japanese_text"`
	Model            string  `json:"model"`
	Language         string  `json:"language,omitempty"`

	Counts transcript.Counts `json:"-"`
	PNG    []byte            `json:"-"`
}

type Service struct {
	renderer Renderer
	log      *logger.Logger
}

func NewService(renderer Renderer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{renderer: renderer, log: log}
}

// Analyze formate les segments, les relit pour calculer la composition puis dessine le graphique.
func (s *Service) Analyze(ctx context.Context, res transcribe.Result, modelName string) (Report, error) {
	tr := res.Transcript()
	formatted := tr.Formatted()
	comp := transcript.Aggregate(formatted)

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	png, err := s.renderer.Render(comp.ChineseRatio, comp.JapaneseRatio)
	if err != nil {
		return Report{}, fmt.Errorf("rendu du graphique : %w", err)
	}

	s.log.Debug("analyse terminée",
		"model", modelName,
		"segments", len(tr.Segments),
		"chinese", comp.Counts.Chinese,
		"japanese", comp.Counts.Japanese,
	)

	return Report{
		ChineseRatio:     comp.ChineseRatio,
		JapaneseRatio:    comp.JapaneseRatio,
		PieChart:         chart.Base64(png),
		FullSpeechToText: formatted,
		SpeechToText:     tr.Collapsed(),
		FullChineseText:  comp.ChineseText,
		FullJapaneseText: comp.JapaneseText,
		Model:            modelName,
		Language:         res.Language,
		Counts:           comp.Counts,
		PNG:              png,
	}, nil
}

// Summary : résumé lisible pour la ligne de commande.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Modèle     : %s\n", r.Model)
	if r.Language != "" {
		fmt.Fprintf(&b, "Langue     : %s\n", r.Language)
	}
	fmt.Fprintf(&b, "Chinese    : %6.2f %% (%d caractères)\n", r.ChineseRatio, r.Counts.Chinese)
	fmt.Fprintf(&b, "Japanese   : %6.2f %% (%d caractères)\n", r.JapaneseRatio, r.Counts.Japanese)
	if r.Counts.Total() == 0 {
		b.WriteString("aucun caractère chinois ou japonais détecté\n")
	}
	return b.String()
}
