package pricing

import "strings"

// UnknownColorHex is the neutral swatch for unmapped color names.
const UnknownColorHex = "#CCCCCC"

// colorHexes maps lowercase French color names, as merchants type them in
// attribute options, to swatch colors.
var colorHexes = map[string]string{
	"blanc":       "#FFFFFF",
	"blanc-casse": "#F8F8FF",
	"blanc cassé": "#F8F8FF",
	"beige":       "#F5F5DC",
	"crème":       "#FFFDD0",
	"ivoire":      "#FFFFF0",
	"noir":        "#000000",
	"gris":        "#808080",
	"bleu":        "#0000FF",
	"bleu-marine": "#000080",
	"bleu marine": "#000080",
	"rouge":       "#FF0000",
	"bordeaux":    "#800020",
	"rose":        "#FFC0CB",
	"vert":        "#008000",
	"jaune":       "#FFFF00",
	"orange":      "#FFA500",
	"violet":      "#800080",
	"marron":      "#A52A2A",
	"dore":        "#FFD700",
	"doré":        "#FFD700",
	"argente":     "#C0C0C0",
	"argenté":     "#C0C0C0",
	"multicolore": "#FF6B6B",
}

// ColorHex looks up a color name case-insensitively.
func ColorHex(name string) string {
	if hex, ok := colorHexes[strings.ToLower(name)]; ok {
		return hex
	}
	return UnknownColorHex
}
