package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/patrickprogramme/scriptratio/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// migrations[v] fait passer une config de la version v à v+1.
var migrations = []func(*Config){
	0: migrateModelNames,
}

// upgradeConfigFile met cfg à la version courante puis réécrit le fichier.
// L'ancien contenu est gardé à côté (suffixe .bak.<horodatage>) et restauré
// si la réécriture échoue.
func upgradeConfigFile(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config nil lors de la migration")
	}
	if cfg.configFilePath == "" {
		return fmt.Errorf("chemin du fichier de configuration inconnu : pas de sauvegarde possible")
	}
	from := cfg.ConfigVersion

	original, err := os.ReadFile(cfg.configFilePath)
	if err != nil {
		return fmt.Errorf("lecture de %s avant migration : %w", cfg.configFilePath, err)
	}
	backup := cfg.configFilePath + ".bak." + time.Now().Format("20060102T150405")
	if err := fsutil.WriteFileAtomic(backup, original, 0o644); err != nil {
		return fmt.Errorf("sauvegarde %s impossible : %w", backup, err)
	}

	for v := from; v < CurrentConfigVersion && v < len(migrations); v++ {
		if v >= 0 && migrations[v] != nil {
			migrations[v](cfg)
		}
	}
	cfg.normalizeConfig()
	cfg.ConfigVersion = CurrentConfigVersion

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encodage YAML de la configuration migrée : %w", err)
	}
	if err := fsutil.WriteFileAtomic(cfg.configFilePath, out, 0o644); err != nil {
		_ = fsutil.WriteFileAtomic(cfg.configFilePath, original, 0o644)
		return fmt.Errorf("réécriture de %s (v%d -> v%d) : %w", cfg.configFilePath, from, CurrentConfigVersion, err)
	}

	fmt.Printf("info : configuration migrée de la version %d à %d (sauvegarde : %s)\n", from, CurrentConfigVersion, backup)
	return nil
}

// migrateModelNames : en v0 les modèles étaient une simple liste de noms whisper.
func migrateModelNames(cfg *Config) {
	if len(cfg.LegacyModelNames) == 0 {
		return
	}
	var models []ModelConfig
	for _, n := range cfg.LegacyModelNames {
		if n = strings.TrimSpace(n); n != "" {
			models = append(models, ModelConfig{Name: n, Kind: KindWhisperCLI})
		}
	}
	cfg.LegacyModelNames = nil
	if len(models) == 0 {
		return
	}
	cfg.Models = models
	if _, ok := cfg.Model(cfg.DefaultModel); !ok {
		cfg.DefaultModel = models[0].Name
	}
}
