package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSegment : segment dont les bornes ne respectent pas 0 <= Start <= End.
var ErrInvalidSegment = errors.New("segment invalide")

// Segment est une tranche horodatée d'un transcript, telle que fournie par le
// moteur de transcription. Invariant : 0 <= Start <= End.
type Segment struct {
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
	Text  string  `json:"text"`
}

func (s Segment) String() string {
	return fmt.Sprintf("Segment(%s -> %s, %q)", s.Start.Clock(), s.End.Clock(), s.Text)
}

// Valid vérifie l'invariant 0 <= Start <= End (NaN est refusé).
func (s Segment) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// CheckSegments renvoie une erreur (ErrInvalidSegment) pour le premier segment
// qui ne respecte pas l'invariant, avec son indice.
func CheckSegments(segs []Segment) error {
	for i, s := range segs {
		if !s.Valid() {
			return fmt.Errorf("%w : n°%d (%v -> %v)", ErrInvalidSegment, i, float64(s.Start), float64(s.End))
		}
	}
	return nil
}

// JoinTexts colle les textes des segments, séparés par un espace, sans blancs superflus.
// Utile quand le moteur ne fournit pas de texte complet.
func JoinTexts(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
