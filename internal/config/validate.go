package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidConfig = errors.New("configuration invalide")

// Validate vérifie la cohérence des modèles et des limites.
// Toutes les erreurs sont regroupées (errors.Join) et enveloppent ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config nil", ErrInvalidConfig)
	}
	var errs []error

	if len(c.Models) == 0 {
		errs = append(errs, fmt.Errorf("%w: aucun modèle déclaré", ErrInvalidConfig))
	}
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("%w: models[%d] sans nom", ErrInvalidConfig, i))
			continue
		}
		if _, dup := seen[m.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: modèle %q déclaré deux fois", ErrInvalidConfig, m.Name))
		}
		seen[m.Name] = struct{}{}

		switch m.Kind {
		case KindWhisperCLI, KindGCPSpeech:
		case KindWhisperHTTP:
			if strings.TrimSpace(m.Endpoint) == "" {
				errs = append(errs, fmt.Errorf("%w: modèle %q (whisper-http) sans endpoint", ErrInvalidConfig, m.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: modèle %q : type inconnu %q", ErrInvalidConfig, m.Name, m.Kind))
		}
		if m.TimeoutSec < 0 {
			errs = append(errs, fmt.Errorf("%w: modèle %q : timeout_sec négatif", ErrInvalidConfig, m.Name))
		}
	}
	if _, ok := seen[c.DefaultModel]; !ok && len(c.Models) > 0 {
		errs = append(errs, fmt.Errorf("%w: default_model %q absent de models", ErrInvalidConfig, c.DefaultModel))
	}
	for _, o := range c.Server.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("%w: cors_origins : origine invalide %q", ErrInvalidConfig, o))
		}
	}
	if c.Chart.Size < 64 {
		errs = append(errs, fmt.Errorf("%w: chart.size trop petit (%d)", ErrInvalidConfig, c.Chart.Size))
	}
	return errors.Join(errs...)
}

// ValidateWhisperPresence vérifie de manière statique que si un ResolvedPath est défini,
// le fichier existe et que le répertoire parent est accessible.
// Retourne warnings (non-fataux) et une erreur si c'est critique.
func (c *Config) ValidateWhisperPresence() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}

	c.ResolveWhisperPath()

	p := strings.TrimSpace(c.WhisperCLI.ResolvedPath)
	if p == "" {
		// pas de chemin résolu : la recherche dans PATH sera tentée au démarrage
		warnings = append(warnings, "aucun chemin configuré pour whisper; recherche dans PATH")
		return warnings, nil
	}

	parent := filepath.Dir(p)
	if st, serr := os.Stat(parent); serr != nil {
		if os.IsNotExist(serr) {
			warnings = append(warnings, fmt.Sprintf("le dossier parent du chemin whisper n'existe pas : %s", parent))
		} else {
			return warnings, fmt.Errorf("impossible d'accéder au dossier parent %s : %w", parent, serr)
		}
	} else if !st.IsDir() {
		return warnings, fmt.Errorf("le parent du chemin whisper n'est pas un répertoire : %s", parent)
	}

	if info, serr := os.Stat(p); serr != nil {
		if os.IsNotExist(serr) {
			warnings = append(warnings, fmt.Sprintf("whisper introuvable à l'emplacement configuré : %s", p))
			return warnings, nil
		}
		return warnings, fmt.Errorf("erreur lors du test du fichier %s : %w", p, serr)
	} else if info.IsDir() {
		return warnings, fmt.Errorf("le chemin configuré pour whisper est un répertoire : %s", p)
	}

	return warnings, nil
}
