package password

import (
	"strings"
	"unicode"
)

type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return len(reasons) == 0, reasons
}

var reasonText = map[string]string{
	"too_short":      "demasiado corta",
	"missing_upper":  "falta una mayúscula",
	"missing_lower":  "falta una minúscula",
	"missing_digit":  "falta un dígito",
	"missing_symbol": "falta un símbolo",
}

// Describe arma un mensaje legible a partir de los reasons de Validate.
func Describe(reasons []string) string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if t, ok := reasonText[r]; ok {
			out = append(out, t)
		} else {
			out = append(out, r)
		}
	}
	return "contraseña inválida: " + strings.Join(out, ", ")
}
