package fsutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// en octets
const maxNameLen = 200

const fallbackName = "untitled"

var (
	// caractères refusés par au moins un système de fichiers courant, contrôles compris
	forbiddenRunes = regexp.MustCompile(`[<>"/\\|?*\x00-\x1F]`)
	spaceRuns      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename transforme un nom fourni par l'utilisateur (upload, titre)
// en nom de fichier utilisable : ":" devient "-", les autres caractères
// interdits deviennent des espaces, les blancs sont compactés et les points
// finaux retirés. Le résultat ne dépasse pas maxNameLen octets et n'est jamais vide.
func SanitizeFilename(name string) string {
	s := strings.ReplaceAll(name, ":", "-")
	s = forbiddenRunes.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.TrimRight(s, ".")

	if len(s) > maxNameLen {
		// les noms d'upload sont souvent en CJK : ne pas couper une rune en deux
		cut := maxNameLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	if s == "" {
		return fallbackName
	}
	return s
}
