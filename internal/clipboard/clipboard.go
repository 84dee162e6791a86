// Package clipboard copie le transcript formaté dans le presse-papier (flag -copy).
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

var (
	ErrEmpty       = errors.New("le texte à copier ne peut pas être vide")
	ErrUnsupported = errors.New("presse-papier indisponible (xclip, xsel ou wl-clipboard requis)")
)

// Available indique si un presse-papier système est utilisable.
func Available() bool {
	return !clipboard.Unsupported
}

// WriteAll écrit une chaîne de caractères dans le presse-papier.
func WriteAll(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if !Available() {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Equals vérifie si le presse-papier contient exactement text.
// En cas d'erreur de lecture, retourne false.
func Equals(text string) bool {
	if !Available() {
		return false
	}
	current, err := clipboard.ReadAll()
	if err != nil {
		return false
	}
	return current == text
}
