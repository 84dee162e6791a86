package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
)

// Page gère le parsing paresseux (lazy) des templates HTML embarqués.
type Page struct {
	templates *template.Template
	fsys      fs.FS
	patterns  []string
	once      sync.Once // protège l'initialisation paresseuse
	err       error     // mémorise l'erreur d'initialisation (utile avec once)
}

// indexData : données passées à la page d'upload.
type indexData struct {
	Title        string
	Models       []string
	DefaultModel string
	UploadPath   string
}

// NewPage prépare le parsing des patterns depuis fsys (ne parse pas immédiatement).
func NewPage(fsys fs.FS, patterns []string) (*Page, error) {
	if fsys == nil {
		return nil, fmt.Errorf("fsys est nil")
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("aucun template fourni")
	}
	return &Page{
		fsys:     fsys,
		patterns: append([]string(nil), patterns...),
	}, nil
}

func (p *Page) parse() error {
	p.once.Do(func() {
		t := template.New("root")
		for _, pat := range p.patterns {
			var err error
			if t, err = t.ParseFS(p.fsys, pat); err != nil {
				p.err = fmt.Errorf("parse pattern %q: %w", pat, err)
				return
			}
		}
		p.templates = t
	})
	return p.err
}

// Render exécute le template name (nom de base, ex. "index.html.tmpl").
// Le rendu passe par un buffer : en cas d'erreur rien n'est écrit au client.
func (p *Page) Render(name string, data any) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil page")
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, path.Base(name), data); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
