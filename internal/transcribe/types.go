// Package transcribe regroupe les moteurs de transcription (whisper en ligne de
// commande, API compatible OpenAI, Google Cloud Speech) derrière une interface commune.
package transcribe

import (
	"context"
	"errors"
	"time"

	"github.com/patrickprogramme/scriptratio/internal/transcript"
	"github.com/patrickprogramme/scriptratio/pkg/model"
)

var (
	ErrUnknownModel = errors.New("modèle inconnu")
	ErrNoBackend    = errors.New("aucun moteur de transcription disponible")
)

// Result est la sortie brute d'un moteur.
type Result struct {
	Language string
	Text     string
	Segments []model.Segment
	Duration time.Duration
}

// Transcript convertit le résultat vers le type manipulé par l'agrégation.
func (r Result) Transcript() transcript.Transcript {
	return transcript.NewTranscript(r.Language, r.Text, r.Segments)
}

// Backend transcrit un fichier audio local.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// Prober est implémenté par les moteurs capables de vérifier leur disponibilité
// (binaire présent, identifiants valides...) avant la première requête.
type Prober interface {
	Probe(ctx context.Context) error
}
