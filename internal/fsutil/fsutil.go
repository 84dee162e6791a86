// Package fsutil regroupe les écritures disque du projet : répertoires de
// travail, noms de fichiers sûrs et écritures atomiques (tmp + rename).
package fsutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir crée path avec ses parents puis vérifie qu'il s'agit bien d'un répertoire.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("chemin de répertoire vide")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	if info, err := os.Stat(path); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s existe mais n'est pas un répertoire", path)
	}
	return nil
}

// WriteFileAtomic écrit data dans destPath sans jamais laisser de fichier partiel.
func WriteFileAtomic(destPath string, data []byte, perm os.FileMode) error {
	_, err := WriteStreamAtomic(destPath, bytes.NewReader(data), perm)
	return err
}

// WriteStreamAtomic copie r dans un fichier temporaire voisin de destPath puis
// le renomme. Les uploads audio passent par ici sans être chargés en mémoire.
// Retourne le nombre d'octets copiés.
func WriteStreamAtomic(destPath string, r io.Reader, perm os.FileMode) (n int64, err error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("fichier temporaire dans %s: %w", dir, err)
	}
	// après un Rename réussi, le Remove échoue sans effet
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if n, err = io.Copy(tmp, r); err != nil {
		return n, fmt.Errorf("écriture %s: %w", tmp.Name(), err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("fermeture %s: %w", tmp.Name(), err)
	}
	_ = os.Chmod(tmp.Name(), perm)

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return n, fmt.Errorf("rename %s -> %s: %w", tmp.Name(), destPath, err)
	}
	return n, nil
}
