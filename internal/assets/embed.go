package assets

import "embed"

//go:embed scriptratio.example.yaml
//go:embed templates/*.tmpl
var Embedded embed.FS

// Nom de l'asset de config par défaut (chemin DANS Embedded)
const DefaultConfigAsset = "scriptratio.example.yaml"

// IndexTemplate : page d'upload servie sur "/" (chemin DANS Embedded).
const IndexTemplate = "templates/index.html.tmpl"

// DefaultTemplatePaths : liste ordonnée des templates embarqués.
var DefaultTemplatePaths = []string{
	IndexTemplate,
}
