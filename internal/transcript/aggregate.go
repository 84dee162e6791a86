package transcript

import (
	"regexp"
	"strings"

	"github.com/patrickprogramme/scriptratio/internal/script"
	"github.com/patrickprogramme/scriptratio/pkg/model"
)

// lineRe : une ligne formatée "[...] texte".
// Le .* est gourmand : le texte est ce qui suit le dernier "] " de la ligne.
var lineRe = regexp.MustCompile(`^\[.*\] (.*)`)

// Counts cumule le nombre de caractères classés par catégorie.
// Les caractères non classés (latin, ponctuation, espaces...) ne sont pas comptés.
type Counts struct {
	Chinese  int
	Japanese int
}

// Total retourne le dénominateur des ratios.
func (c Counts) Total() int {
	return c.Chinese + c.Japanese
}

func (c *Counts) add(o Counts) {
	c.Chinese += o.Chinese
	c.Japanese += o.Japanese
}

// Composition est le résultat de l'agrégation d'un transcript.
type Composition struct {
	ChineseRatio  float64 // pourcentage 0-100
	JapaneseRatio float64 // pourcentage 0-100
	ChineseText   string  // fragments par ligne joints par un espace
	JapaneseText  string
	Counts        Counts
}

// ExtractLineText retire le préfixe "[start --> end] " d'une ligne formatée et
// retourne le texte trimé. ok=false si la ligne ne respecte pas le format.
func ExtractLineText(line string) (string, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// lineScripts classe chaque rune de text et retourne les compteurs
// et les sous-chaînes par catégorie, dans l'ordre de lecture.
func lineScripts(text string) (Counts, string, string) {
	var c Counts
	var zh, ja strings.Builder
	for _, r := range text {
		switch script.Classify(r) {
		case script.Chinese:
			c.Chinese++
			zh.WriteRune(r)
		case script.Japanese:
			c.Japanese++
			ja.WriteRune(r)
		}
	}
	return c, zh.String(), ja.String()
}

// accumulator regroupe l'état local d'une agrégation ; jamais partagé entre appels.
type accumulator struct {
	counts  Counts
	zhParts []string
	jaParts []string
}

func (a *accumulator) addLine(text string) {
	c, zh, ja := lineScripts(text)
	a.counts.add(c)
	if zh != "" {
		a.zhParts = append(a.zhParts, zh)
	}
	if ja != "" {
		a.jaParts = append(a.jaParts, ja)
	}
}

func (a *accumulator) result() Composition {
	out := Composition{
		ChineseText:  strings.Join(a.zhParts, " "),
		JapaneseText: strings.Join(a.jaParts, " "),
		Counts:       a.counts,
	}
	if total := a.counts.Total(); total > 0 {
		out.ChineseRatio = float64(a.counts.Chinese) / float64(total) * 100
		out.JapaneseRatio = float64(a.counts.Japanese) / float64(total) * 100
	}
	return out
}

// Aggregate relit un transcript formaté (voir FormatSegments) et calcule
// la composition. Les lignes mal formées sont ignorées sans erreur.
// Un transcript vide donne des ratios à 0 et des textes vides.
func Aggregate(formatted string) Composition {
	var acc accumulator
	for _, line := range strings.Split(strings.TrimSpace(formatted), "\n") {
		text, ok := ExtractLineText(line)
		if !ok {
			continue
		}
		acc.addLine(text)
	}
	return acc.result()
}

// AggregateSegments calcule la même composition directement depuis les segments,
// sans passer par le texte formaté. Un texte contenant "\n" ou "] " est traité
// tel quel, alors qu'Aggregate le redécoupe : les résultats peuvent alors différer.
func AggregateSegments(segs []model.Segment) Composition {
	var acc accumulator
	for _, s := range segs {
		acc.addLine(strings.TrimSpace(s.Text))
	}
	return acc.result()
}

// Composition retourne la composition du transcript via le texte formaté.
func (t Transcript) Composition() Composition {
	return Aggregate(t.Formatted())
}
