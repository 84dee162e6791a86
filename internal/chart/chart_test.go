package chart

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"strings"
	"sync"
	"testing"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	return img
}

// pointAt retourne le pixel situé à dist*radius du centre (éventuellement décalé) de la part,
// dans la direction trigonométrique angle (degrés).
func pointAt(size int, explode, sliceMid, angle, dist float64) (int, int) {
	s := float64(size)
	cx, cy := s/2, s*0.55
	radius := s * radiusFraction
	if explode > 0 {
		m := sliceMid * math.Pi / 180
		cx += radius * explode * math.Cos(m)
		cy -= radius * explode * math.Sin(m)
	}
	a := angle * math.Pi / 180
	return int(cx + dist*radius*math.Cos(a)), int(cy - dist*radius*math.Sin(a))
}

func rgb(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func assertColor(t *testing.T, img image.Image, x, y int, want [3]uint8) {
	t.Helper()
	r, g, b := rgb(img.At(x, y))
	if [3]uint8{r, g, b} != want {
		t.Fatalf("pixel (%d,%d) = #%02x%02x%02x; want #%02x%02x%02x", x, y, r, g, b, want[0], want[1], want[2])
	}
}

var (
	pink = [3]uint8{0xff, 0x99, 0x99}
	blue = [3]uint8{0x66, 0xb3, 0xff}
)

func TestRender_Dimensions(t *testing.T) {
	r := newTestRenderer(t)
	b, err := r.Render(40, 60)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, b)
	if got := img.Bounds(); got.Dx() != DefaultSize || got.Dy() != DefaultSize {
		t.Fatalf("bounds = %v; want %dx%d", got, DefaultSize, DefaultSize)
	}
}

func TestRender_CustomSize(t *testing.T) {
	r, err := New(Options{Size: 300})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Size() != 300 {
		t.Fatalf("Size() = %d", r.Size())
	}
	b, err := r.Render(50, 50)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := decode(t, b).Bounds().Dx(); got != 300 {
		t.Fatalf("width = %d; want 300", got)
	}
}

func TestRender_SingleSlice(t *testing.T) {
	r := newTestRenderer(t)

	b, err := r.Render(100, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// part unique de 140° à 500°, bissectrice à 320°, décalée
	x, y := pointAt(r.Size(), explodeFactor, 320, 320, 0.25)
	assertColor(t, decode(t, b), x, y, pink)

	b, err = r.Render(0, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	x, y = pointAt(r.Size(), 0, 0, 320, 0.25)
	assertColor(t, decode(t, b), x, y, blue)
}

func TestRender_TwoSlices(t *testing.T) {
	r := newTestRenderer(t)
	b, err := r.Render(50, 50)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, b)
	// Chinese : 140° -> 320°, bissectrice 230° ; Japanese : 320° -> 500°, bissectrice 50°
	x, y := pointAt(r.Size(), explodeFactor, 230, 230, 0.25)
	assertColor(t, img, x, y, pink)
	x, y = pointAt(r.Size(), 0, 0, 50, 0.25)
	assertColor(t, img, x, y, blue)
}

func TestRender_NoData(t *testing.T) {
	r := newTestRenderer(t)
	b, err := r.Render(0, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, b)
	x, y := pointAt(r.Size(), 0, 0, 90, 0.7)
	assertColor(t, img, x, y, [3]uint8{0xff, 0xff, 0xff})
}

func TestLayout(t *testing.T) {
	ws := layout([]slice{{label: "a", value: 25}, {label: "b", value: 0}, {label: "c", value: 75}}, 100)
	if len(ws) != 2 {
		t.Fatalf("got %d wedges; want 2 (zero slice skipped)", len(ws))
	}
	if ws[0].from != startAngle || ws[0].to != startAngle+90 {
		t.Errorf("first wedge = [%v, %v]", ws[0].from, ws[0].to)
	}
	if ws[1].to != startAngle+360 {
		t.Errorf("last wedge ends at %v; want %v", ws[1].to, startAngle+360)
	}
	if ws[1].percent != 75 {
		t.Errorf("percent = %v; want 75", ws[1].percent)
	}
}

func TestRender_Concurrent(t *testing.T) {
	r := newTestRenderer(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Render(float64(i*10), float64(100-i*10)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Render: %v", err)
	}
}

func TestNew_BadFontPath(t *testing.T) {
	_, err := New(Options{FontPath: "/does/not/exist.ttf"})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("New with missing font: err = %v; want fs.ErrNotExist", err)
	}
	if !strings.Contains(err.Error(), "police") {
		t.Errorf("error message = %q", err)
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI([]byte{0x89, 'P', 'N', 'G'})
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("DataURI = %q", got)
	}
	if Base64([]byte("hi")) != "aGk=" {
		t.Fatalf("Base64 mismatch")
	}
}
