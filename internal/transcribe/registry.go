package transcribe

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patrickprogramme/scriptratio/internal/config"
	"github.com/patrickprogramme/scriptratio/internal/logger"
)

const maxConcurrentProbes = 4

// Registry associe un nom de modèle à son moteur. Construit une fois au démarrage,
// il n'est plus modifié ensuite (lecture concurrente sans verrou).
type Registry struct {
	backends map[string]Backend
	order    []string
	def      string
}

// NewBackend construit le moteur décrit par m.
func NewBackend(ctx context.Context, cfg *config.Config, m config.ModelConfig) (Backend, error) {
	timeout := time.Duration(m.TimeoutSec) * time.Second
	switch m.Kind {
	case config.KindWhisperCLI:
		w := NewWhisperCLI(m.Name, cfg.WhisperCLI.Name, cfg.WhisperCLI.ResolvedPath, WhisperCLIConfig{
			Model:    m.BackendModel(),
			Device:   cfg.WhisperCLI.Device,
			Language: m.Language,
		})
		w.Timeout = timeout
		return w, nil
	case config.KindWhisperHTTP:
		return NewWhisperHTTP(m.Name, m.Endpoint, m.BackendModel(), m.Language, m.APIKeyEnv, timeout), nil
	case config.KindGCPSpeech:
		gcpModel := m.Model // pas de repli sur Name : les noms GCP diffèrent des noms exposés
		g, err := NewGCPSpeech(ctx, m.Name, gcpModel, m.Language, timeout, ClientOptionsFromEnv(m.APIKeyEnv)...)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("type de moteur inconnu %q", m.Kind)
	}
}

// NewRegistry construit et sonde en parallèle les moteurs déclarés dans cfg.
// Un moteur qui échoue est écarté avec un avertissement ; un registre vide est une erreur.
func NewRegistry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Registry, error) {
	build := func(ctx context.Context, m config.ModelConfig) (Backend, error) {
		return NewBackend(ctx, cfg, m)
	}
	return buildRegistry(ctx, cfg.Models, cfg.DefaultModel, build, log)
}

func buildRegistry(ctx context.Context, models []config.ModelConfig, def string,
	build func(context.Context, config.ModelConfig) (Backend, error), log *logger.Logger) (*Registry, error) {
	built := make([]Backend, len(models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, m := range models {
		g.Go(func() error {
			b, err := build(gctx, m)
			if err == nil {
				if p, ok := b.(Prober); ok {
					err = p.Probe(gctx)
				}
			}
			if err != nil {
				log.Warn("moteur de transcription écarté", "model", m.Name, "kind", m.Kind, "error", err)
				if c, ok := b.(io.Closer); ok {
					_ = c.Close()
				}
				return nil
			}
			built[i] = b
			return nil
		})
	}
	_ = g.Wait() // les goroutines ne renvoient jamais d'erreur
	if err := ctx.Err(); err != nil {
		closeBackends(built)
		return nil, err
	}

	backends := make([]Backend, 0, len(built))
	for _, b := range built {
		if b != nil {
			backends = append(backends, b)
		}
	}
	r, err := NewRegistryFrom(backends, def)
	if err != nil {
		closeBackends(backends)
		return nil, err
	}
	if r.def != def {
		log.Warn("modèle par défaut indisponible, repli", "wanted", def, "default", r.def)
	}
	log.Info("moteurs de transcription prêts", "models", r.Names(), "default", r.def)
	return r, nil
}

// NewRegistryFrom construit un registre à partir de moteurs déjà prêts (l'ordre est conservé).
// Si def est absent, le premier moteur devient le défaut.
func NewRegistryFrom(backends []Backend, def string) (*Registry, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackend
	}
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		if _, dup := r.backends[b.Name()]; dup {
			return nil, fmt.Errorf("moteur %q déclaré deux fois", b.Name())
		}
		r.backends[b.Name()] = b
		r.order = append(r.order, b.Name())
	}
	r.def = def
	if _, ok := r.backends[def]; !ok {
		r.def = r.order[0]
	}
	return r, nil
}

func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Lookup retourne le moteur name, ou ErrUnknownModel.
func (r *Registry) Lookup(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return b, nil
}

// Names retourne les noms dans l'ordre de la configuration.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Default() string { return r.def }

// Close ferme les moteurs qui détiennent des ressources (client gRPC).
func (r *Registry) Close() error {
	var first error
	for _, name := range r.order {
		if c, ok := r.backends[name].(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// closeBackends libère les moteurs déjà construits quand le registre n'aboutit pas.
func closeBackends(backends []Backend) {
	for _, b := range backends {
		if c, ok := b.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
