// Package bootstrap prépare les fichiers nécessaires au premier lancement.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/patrickprogramme/scriptratio/internal/fsutil"
)

// EnsureConfigPresent copie l'asset embarqué assetPath (dans fsys) vers dstPath
// si dstPath n'existe pas encore. Idempotent : ne remplace jamais un fichier existant.
// created indique si le fichier vient d'être écrit.
func EnsureConfigPresent(dstPath string, fsys fs.FS, assetPath string) (created bool, err error) {
	if _, err := os.Stat(dstPath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("échec stat fichier cible %s: %w", dstPath, err)
	}

	parent := filepath.Dir(dstPath)
	if err := fsutil.EnsureDir(parent); err != nil {
		return false, fmt.Errorf("répertoire de configuration %s: %w", parent, err)
	}

	data, err := fs.ReadFile(fsys, filepath.ToSlash(assetPath))
	if err != nil {
		return false, fmt.Errorf("lecture asset embarqué %s: %w", assetPath, err)
	}
	if err := fsutil.WriteFileAtomic(dstPath, data, 0o644); err != nil {
		return false, fmt.Errorf("échec écriture config %s: %w", dstPath, err)
	}
	return true, nil
}
