package model

import (
	"fmt"
	"math"
)

// Seconds représente un instant (ou une durée) en secondes, avec fraction.
type Seconds float64

// Clock formate Seconds en "MM:SS.mmm".
// MM = floor(s/60) sur au moins 2 chiffres, SS.mmm = s mod 60 sur 6 caractères.
// Exemple : 65.125 -> "01:05.125", 3.5 -> "00:03.500".
// Les secondes sont arrondies au format sans retenue sur les minutes :
// 59.9996 donne "00:60.000" et 119.9999 donne "01:60.000".
// Une valeur négative ou NaN n'est pas définie : l'appelant garantit s >= 0.
func (s Seconds) Clock() string {
	v := float64(s)
	m := int64(math.Floor(v / 60))
	rest := math.Mod(v, 60)
	return fmt.Sprintf("%02d:%06.3f", m, rest)
}

// constantes pour les formats de fichiers produits par l'analyse
type Format string

const (
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
)

// du format en chaine à la constante de type Format, return une erreur si format inconnu
func ParseFormat(s string) (Format, error) {
	switch s {
	case "txt":
		return FormatTXT, nil
	case "json":
		return FormatJSON, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("format demandé inconnu: %s", s)
	}
}

func (f Format) IsTextual() bool {
	return f == FormatTXT || f == FormatJSON
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}
