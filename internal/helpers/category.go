package helpers

import (
	"strings"
	"unicode"

	"github.com/joshua-takyi/servicios/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var categoryAliases = map[string]models.Category{
	"PLOMERO":      models.CategoryPlomeria,
	"GASFITERO":    models.CategoryPlomeria,
	"GASFITERIA":   models.CategoryPlomeria,
	"ELECTRICISTA": models.CategoryElectricidad,
	"ELECTRICO":    models.CategoryElectricidad,
	"CARPINTERO":   models.CategoryCarpinteria,
	"PINTOR":       models.CategoryPintura,
	"LIMPIADOR":    models.CategoryLimpieza,
	"JARDINERO":    models.CategoryJardineria,
	"CERRAJERO":    models.CategoryCerrajeria,
	"ALBANIL":      models.CategoryAlbanileria,
	"CONSTRUCCION": models.CategoryAlbanileria,
	"MECANICO":     models.CategoryMecanica,
	"TECNICO":      models.CategoryTecnologia,
	"INFORMATICA":  models.CategoryTecnologia,
	"MUDANZA":      models.CategoryMudanzas,
	"OTRO":         models.CategoryOtros,
}

// FoldAccents strips combining marks, so "Albañilería" becomes "Albanileria".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCategory maps free text onto a known category, falling back to OTROS.
func NormalizeCategory(raw string) models.Category {
	if c, ok := LookupCategory(raw); ok {
		return c
	}
	return models.CategoryOtros
}

// LookupCategory folds case, accents and separators, then matches the enum or an alias.
func LookupCategory(raw string) (models.Category, bool) {
	key := strings.ToUpper(FoldAccents(raw))
	key = strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key)), " ")
	if key == "" {
		return "", false
	}
	for _, c := range models.Categories {
		if string(c) == key {
			return c, true
		}
	}
	c, ok := categoryAliases[key]
	return c, ok
}
