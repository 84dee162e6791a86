// Package chart dessine le camembert de composition Chinese / Japanese.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

const (
	DefaultSize = 600 // 6in x 100dpi

	Title = "Proportion of L1 and L2 usage"

	chineseColor  = "#ff9999"
	japaneseColor = "#66b3ff"

	startAngle     = 140.0 // degrés, sens trigonométrique
	explodeFactor  = 0.1   // décalage de la part Chinese, en fraction du rayon
	labelDistance  = 1.1   // position des libellés, en fraction du rayon
	pctDistance    = 0.6   // position des pourcentages
	shadowOffset   = 0.02  // ombre portée, en fraction du rayon
	radiusFraction = 0.30  // rayon / taille du canvas
)

// slice est une part du camembert.
type slice struct {
	label   string
	value   float64
	color   string
	explode float64
}

// Options configure un Renderer.
type Options struct {
	Size     int    // côté du canvas en pixels ; <= 0 => DefaultSize
	FontPath string // police TrueType ; vide => Go Bold embarquée
}

// Renderer produit des PNG. Les faces de police truetype ne sont pas
// réentrantes : un seul rendu à la fois, protégé par mu.
type Renderer struct {
	size int

	mu        sync.Mutex
	labelFace font.Face
	pctFace   font.Face
	titleFace font.Face
}

// New charge la police et prépare les faces ; c'est la seule étape qui peut échouer
// en dehors de l'encodage PNG.
func New(opts Options) (*Renderer, error) {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	f, err := loadFont(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("chargement de la police du graphique : %w", err)
	}
	scale := float64(size) / DefaultSize
	return &Renderer{
		size:      size,
		labelFace: newFace(f, 16*scale),
		pctFace:   newFace(f, 14*scale),
		titleFace: newFace(f, 20*scale),
	}, nil
}

// Size retourne le côté du canvas en pixels.
func (r *Renderer) Size() int {
	return r.size
}

// Render dessine le camembert des deux ratios (0-100) et retourne le PNG encodé.
// Les ratios hors [0,100] ne sont pas définis : ils doivent venir de l'agrégation.
func (r *Renderer) Render(chineseRatio, japaneseRatio float64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := float64(r.size)
	dc := gg.NewContext(r.size, r.size)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	// titre
	dc.SetFontFace(r.titleFace)
	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(Title, s/2, s*0.08, 0.5, 0.5)

	cx, cy := s/2, s*0.55
	radius := s * radiusFraction

	slices := []slice{
		{label: "Chinese", value: chineseRatio, color: chineseColor, explode: explodeFactor},
		{label: "Japanese", value: japaneseRatio, color: japaneseColor},
	}
	total := 0.0
	for _, sl := range slices {
		if sl.value > 0 {
			total += sl.value
		}
	}

	if total <= 0 {
		// aucun caractère classé : cercle vide pour garder un PNG valide
		dc.DrawCircle(cx, cy, radius)
		dc.SetHexColor("#cccccc")
		dc.SetLineWidth(2)
		dc.Stroke()
		dc.SetFontFace(r.labelFace)
		dc.SetHexColor("#666666")
		dc.DrawStringAnchored("no classified characters", cx, cy, 0.5, 0.5)
		return encode(dc)
	}

	wedges := layout(slices, total)

	// ombres d'abord, sous toutes les parts
	off := radius * shadowOffset
	for _, w := range wedges {
		ox, oy := w.center(cx, cy, radius)
		drawWedge(dc, ox+off, oy+off, radius, w.from, w.to)
		dc.SetRGBA(0, 0, 0, 0.3)
		dc.Fill()
	}
	for _, w := range wedges {
		ox, oy := w.center(cx, cy, radius)
		drawWedge(dc, ox, oy, radius, w.from, w.to)
		dc.SetHexColor(w.color)
		dc.Fill()
	}

	// libellés à l'extérieur, pourcentages à l'intérieur
	for _, w := range wedges {
		ox, oy := w.center(cx, cy, radius)
		mid := (w.from + w.to) / 2
		cos, sin := math.Cos(gg.Radians(mid)), math.Sin(gg.Radians(mid))

		ax := 0.0
		if cos < 0 {
			ax = 1
		}
		dc.SetFontFace(r.labelFace)
		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(w.label, ox+cos*radius*labelDistance, oy-sin*radius*labelDistance, ax, 0.5)

		dc.SetFontFace(r.pctFace)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f%%", w.percent), ox+cos*radius*pctDistance, oy-sin*radius*pctDistance, 0.5, 0.5)
	}

	return encode(dc)
}

// wedge est une part positionnée, angles en degrés trigonométriques.
type wedge struct {
	slice
	from, to float64
	percent  float64
}

// center retourne le centre de la part, décalé le long de la bissectrice si explode > 0.
func (w wedge) center(cx, cy, radius float64) (float64, float64) {
	if w.explode == 0 {
		return cx, cy
	}
	mid := gg.Radians((w.from + w.to) / 2)
	d := radius * w.explode
	return cx + d*math.Cos(mid), cy - d*math.Sin(mid)
}

// layout répartit les parts non nulles à partir de startAngle, sens trigonométrique.
func layout(slices []slice, total float64) []wedge {
	out := make([]wedge, 0, len(slices))
	angle := startAngle
	for _, sl := range slices {
		if sl.value <= 0 {
			continue
		}
		frac := sl.value / total
		sweep := 360 * frac
		out = append(out, wedge{slice: sl, from: angle, to: angle + sweep, percent: frac * 100})
		angle += sweep
	}
	return out
}

// drawWedge trace le chemin d'une part. gg a l'axe y vers le bas : un angle
// trigonométrique a devient -a à l'écran.
func drawWedge(dc *gg.Context, cx, cy, radius, from, to float64) {
	dc.NewSubPath()
	dc.MoveTo(cx, cy)
	dc.DrawArc(cx, cy, radius, gg.Radians(-to), gg.Radians(-from))
	dc.ClosePath()
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("échec encodage PNG : %w", err)
	}
	return buf.Bytes(), nil
}

// Base64 encode le PNG en base64 standard (champ pie_chart de la réponse).
func Base64(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}

// DataURI retourne le PNG sous forme de data URI, pour un <img src>.
func DataURI(png []byte) string {
	return "data:image/png;base64," + Base64(png)
}
