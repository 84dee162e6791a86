package transcript

import (
	"github.com/patrickprogramme/scriptratio/pkg/model"
)

// Transcript représente le résultat d'une transcription
// (segments horodatés + texte complet fourni par le moteur).
type Transcript struct {
	Language string          // langue détectée par le moteur (peut être vide)
	Text     string          // texte complet non segmenté
	Segments []model.Segment // segments dans l'ordre du moteur
}

// NewTranscript construit un Transcript à partir de données déjà prêtes.
// - pure function, pas d'I/O ni de parsing.
func NewTranscript(language, text string, segments []model.Segment) Transcript {
	return Transcript{
		Language: language,
		Text:     text,
		Segments: segments,
	}
}
