package transcript

import (
	"fmt"
	"strings"

	"github.com/patrickprogramme/scriptratio/internal/fsutil"
	"github.com/patrickprogramme/scriptratio/pkg/model"
)

// FormatTime formate un nombre de secondes en "MM:SS.mmm".
func FormatTime(seconds float64) string {
	return model.Seconds(seconds).Clock()
}

// FormatLine produit la ligne "[start --> end] text" d'un segment.
// Le texte est repris tel quel (ni trim ni ré-encodage).
func FormatLine(s model.Segment) string {
	return "[" + s.Start.Clock() + " --> " + s.End.Clock() + "] " + s.Text
}

// FormatSegments produit le transcript formaté : une ligne par segment,
// dans l'ordre reçu, séparées par un seul "\n" (pas de newline final).
// Ce format est relu par Aggregate, les deux doivent rester compatibles.
func FormatSegments(segs []model.Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatLine(s))
	}
	return b.String()
}

// Formatted retourne le transcript horodaté (voir FormatSegments).
func (t Transcript) Formatted() string {
	return FormatSegments(t.Segments)
}

// Collapsed retourne le texte complet sur une seule ligne.
// Si le moteur n'a pas fourni de texte, on recolle les segments.
func (t Transcript) Collapsed() string {
	if txt := strings.TrimSpace(t.Text); txt != "" {
		return txt
	}
	return model.JoinTexts(t.Segments)
}

// SaveAs écrit le transcript formaté dans path (écriture atomique).
// Seul le format txt est accepté ici ; le json est produit par le rapport d'analyse.
func (t Transcript) SaveAs(path string, format model.Format) error {
	if format != model.FormatTXT {
		return fmt.Errorf("format inconnu dans SaveAs: %s", format)
	}
	data := []byte(t.Formatted() + "\n")
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("échec écriture fichier %s : %w", path, err)
	}
	return nil
}

// Filename compose le nom du fichier de sortie pour base et format.
func Filename(base string, format model.Format) (string, error) {
	if !format.IsTextual() && format != model.FormatPNG {
		return "", fmt.Errorf("format inconnu dans Filename: %q", format)
	}
	return fsutil.SanitizeFilename(strings.TrimSpace(base)) + format.Extension(), nil
}
