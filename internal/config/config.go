package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/patrickprogramme/scriptratio/internal/assets"
	"github.com/patrickprogramme/scriptratio/internal/bootstrap"
	"gopkg.in/yaml.v3"
)

const CurrentConfigVersion = 1

// types de backend de transcription reconnus
const (
	KindWhisperCLI  = "whisper-cli"
	KindWhisperHTTP = "whisper-http"
	KindGCPSpeech   = "gcp-speech"
)

const (
	defaultAddr           = ":5000"
	defaultMaxUploadBytes = 200 << 20
	defaultChartSize      = 600
)

// ModelConfig décrit un modèle de transcription sélectionnable par le client.
type ModelConfig struct {
	Name       string `yaml:"name"`        // nom exposé (champ "model" du formulaire)
	Kind       string `yaml:"kind"`        // whisper-cli | whisper-http | gcp-speech
	Model      string `yaml:"model"`       // identifiant passé au backend ; vide => Name
	Endpoint   string `yaml:"endpoint"`    // whisper-http uniquement
	APIKeyEnv  string `yaml:"api_key_env"` // variable d'environnement contenant la clé API
	Language   string `yaml:"language"`    // vide => détection automatique
	TimeoutSec int    `yaml:"timeout_sec"`
}

// BackendModel retourne l'identifiant de modèle effectif.
func (m ModelConfig) BackendModel() string {
	if strings.TrimSpace(m.Model) != "" {
		return m.Model
	}
	return m.Name
}

// struct pour les paramètres de configuration
type Config struct {
	// Serveur HTTP
	Server struct {
		Addr           string   `yaml:"addr"`
		PortEnv        string   `yaml:"port_env"` // si la variable est définie, elle remplace le port de Addr
		CORSOrigins    []string `yaml:"cors_origins"`
		MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	// Uploads
	UploadDir   string `yaml:"upload_dir"`
	KeepUploads bool   `yaml:"keep_uploads"`

	// Transcription
	DefaultModel string        `yaml:"default_model"`
	Models       []ModelConfig `yaml:"models"`

	// LegacyModelNames : format v0 (liste de noms whisper), converti par migrateModelNames
	LegacyModelNames []string `yaml:"model_names,omitempty"`

	// binaire whisper (backend whisper-cli)
	WhisperCLI struct {
		Name   string `yaml:"name"`
		Path   string `yaml:"path"`
		Device string `yaml:"device"`

		// ResolvedPath contient le chemin effectif vers l'exécutable
		ResolvedPath string `yaml:"-"`
	} `yaml:"whisper_cli"`

	// Graphique
	Chart struct {
		Size     int    `yaml:"size"`
		FontPath string `yaml:"font_path"`
	} `yaml:"chart"`

	// Logs
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	ConfigVersion int `yaml:"config_version"`

	configFilePath string
}

// defaultModels : les trois modèles whisper chargés au démarrage
func defaultModels() []ModelConfig {
	return []ModelConfig{
		{Name: "turbo", Kind: KindWhisperCLI},
		{Name: "large-v2", Kind: KindWhisperCLI},
		{Name: "large-v3", Kind: KindWhisperCLI},
	}
}

// Configuration par défaut (fallback si l'asset embarqué est manquant)
func defaultConfig() *Config {
	c := &Config{}

	// Serveur
	c.Server.Addr = defaultAddr
	c.Server.PortEnv = "PORT"
	c.Server.CORSOrigins = []string{"http://localhost:5000", "http://127.0.0.1:5000"}
	c.Server.MaxUploadBytes = defaultMaxUploadBytes

	// Uploads
	c.UploadDir = "uploads"
	c.KeepUploads = false

	// Transcription
	c.DefaultModel = "turbo"
	c.Models = defaultModels()

	// whisper
	c.WhisperCLI.Name = "whisper"
	c.WhisperCLI.Path = ""
	c.WhisperCLI.Device = "cpu"

	// Graphique
	c.Chart.Size = defaultChartSize

	// Logs
	c.Log.Mode = "dev"

	c.ConfigVersion = CurrentConfigVersion

	return c
}

// Default retourne la configuration par défaut normalisée (utile sans fichier, et pour les tests).
func Default() *Config {
	c := defaultConfig()
	c.normalizeConfig()
	return c
}

// Load lit la config. Un fichier absent est d'abord créé depuis l'exemple embarqué.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "scriptratio.yaml"
	}

	if _, err := bootstrap.EnsureConfigPresent(path, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		return nil, fmt.Errorf("échec de création du fichier de configuration par défaut : %w", err)
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture du fichier de configuration %s impossible : %w", path, err)
	}

	// corriger les chemins Windows avec des backslashes
	data = bytes.ReplaceAll(data, []byte(`\`), []byte(`/`))

	// On déserialise dans cfg initialisé : les champs absents conservent les valeurs par défaut,
	// sauf la version : un fichier sans config_version est un fichier v0.
	cfg.ConfigVersion = 0
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("analyse du fichier de configuration %s impossible : %w", path, err)
	}
	cfg.configFilePath = path

	cfg.normalizeConfig()

	// gestion de version : si le fichier est plus ancien -> orchestrer la mise à jour
	if cfg.ConfigVersion < CurrentConfigVersion {
		if err := upgradeConfigFile(cfg); err != nil {
			return nil, fmt.Errorf("échec de mise à niveau de la configuration : %w", err)
		}
		cfg.normalizeConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalide (%s) : %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalizeConfig() {
	// Nettoyage des chemins
	c.UploadDir = filepath.Clean(strings.TrimSpace(c.UploadDir))
	c.Chart.FontPath = strings.TrimSpace(c.Chart.FontPath)

	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Chart.Size <= 0 {
		c.Chart.Size = defaultChartSize
	}

	c.DefaultModel = strings.TrimSpace(c.DefaultModel)
	for i := range c.Models {
		c.Models[i].Name = strings.TrimSpace(c.Models[i].Name)
		c.Models[i].Kind = strings.TrimSpace(strings.ToLower(c.Models[i].Kind))
		if c.Models[i].Kind == "" {
			c.Models[i].Kind = KindWhisperCLI
		}
	}
	if c.DefaultModel == "" && len(c.Models) > 0 {
		c.DefaultModel = c.Models[0].Name
	}

	c.Log.Mode = strings.TrimSpace(strings.ToLower(c.Log.Mode))
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}

	c.ResolveWhisperPath()
}

// ListenAddr retourne l'adresse d'écoute ; la variable PortEnv (PORT par défaut)
// remplace le port configuré si elle est définie.
func (c *Config) ListenAddr() string {
	if c.Server.PortEnv != "" {
		if port := strings.TrimSpace(os.Getenv(c.Server.PortEnv)); port != "" {
			host := ""
			if i := strings.LastIndex(c.Server.Addr, ":"); i >= 0 {
				host = c.Server.Addr[:i]
			}
			return host + ":" + port
		}
	}
	return c.Server.Addr
}

// Model retourne la configuration du modèle name.
func (c *Config) Model(name string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// ResolveWhisperPath normalise le nom et résout le chemin complet vers l'exécutable whisper.
// Appeler après avoir modifié cfg.WhisperCLI.Name ou cfg.WhisperCLI.Path.
func (c *Config) ResolveWhisperPath() {
	if c == nil {
		return
	}

	c.WhisperCLI.Name = strings.TrimSpace(c.WhisperCLI.Name)
	if c.WhisperCLI.Name == "" {
		c.WhisperCLI.Name = "whisper"
	}

	// ajoute .exe si nécessaire
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(c.WhisperCLI.Name), ".exe") {
		c.WhisperCLI.Name = c.WhisperCLI.Name + ".exe"
	}

	// si Path est vide -> on laisse exec.LookPath chercher le nom dans PATH
	exeName := c.WhisperCLI.Name
	cfgPath := strings.TrimSpace(c.WhisperCLI.Path)
	if cfgPath == "" {
		c.WhisperCLI.ResolvedPath = ""
		return
	}
	cleanPath := filepath.Clean(cfgPath)

	// si le chemin fourni finit déjà par l'exécutable -> on l'utilise
	if filepath.Base(cleanPath) == exeName {
		c.WhisperCLI.ResolvedPath = cleanPath
	} else {
		// sinon on considère cfgPath comme un répertoire et on y joint l'exe
		c.WhisperCLI.ResolvedPath = filepath.Join(cleanPath, exeName)
	}
}
