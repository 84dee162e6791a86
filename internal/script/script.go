// Package script classe les caractères par famille d'écriture à partir de
// plages de points de code Unicode. Aucune analyse linguistique : un kanji
// japonais est compté comme Chinese.
package script

// Category est la famille d'écriture d'un caractère.
type Category int

const (
	None Category = iota
	Chinese
	Japanese
)

// bornes inclusives des blocs Unicode reconnus
const (
	cjkFirst     = 0x4E00 // CJK Unified Ideographs
	cjkLast      = 0x9FFF
	kanaFirst    = 0x3040 // Hiragana + Katakana
	kanaLast     = 0x30FF
	kanaExtFirst = 0x31F0 // Katakana Phonetic Extensions
	kanaExtLast  = 0x31FF
)

// Classify retourne la catégorie de r. Toute rune a exactement une catégorie.
func Classify(r rune) Category {
	switch {
	case r >= cjkFirst && r <= cjkLast:
		return Chinese
	case r >= kanaFirst && r <= kanaLast, r >= kanaExtFirst && r <= kanaExtLast:
		return Japanese
	default:
		return None
	}
}

func (c Category) String() string {
	switch c {
	case Chinese:
		return "Chinese"
	case Japanese:
		return "Japanese"
	default:
		return "None"
	}
}
