package inventory

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCode deja el código de producto en su forma canónica: sin espacios laterales,
// en mayúsculas y en NFC, para que "café-01" y "CAFÉ-01" colisionen al validar unicidad.
func NormalizeCode(code string) string {
	return norm.NFC.String(strings.ToUpper(strings.TrimSpace(code)))
}
