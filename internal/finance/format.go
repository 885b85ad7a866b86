package finance

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// groupedInt matches dot-grouped integers like "60.000" or "1.234.567".
var groupedInt = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// FormatAmount renders an amount with the Vietnamese separator convention:
// "." groups thousands, "," marks decimals. Whole amounts render without a
// fractional part, everything else with exactly two digits.
//
//	1234567  → "1.234.567"
//	1234.5   → "1.234,50"
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return groupThousands(d.StringFixed(0))
	}
	s := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")
	return groupThousands(intPart) + "," + fracPart
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var buf bytes.Buffer
	if neg {
		buf.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if buf.Len() > 0 && !(neg && buf.Len() == 1) {
			buf.WriteByte('.')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}

// CoerceDecimal parses a raw JSON value that should be a number but, in
// legacy spreadsheet rows, may be a quoted string ("1.234,5"), empty, null
// or plain garbage. Unparseable input defaults to zero — with a logged
// warning so the operator can spot broken records instead of silently
// billing them at nothing.
func CoerceDecimal(raw []byte) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return decimal.Zero
	}

	// "60.000" is sixty thousand in the legacy rows, not sixty — catch
	// dot-grouped integers before the plain parse can misread them.
	if groupedInt.MatchString(s) {
		if d, err := decimal.NewFromString(strings.ReplaceAll(s, ".", "")); err == nil {
			return d
		}
	}

	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}

	// Vietnamese-formatted strings: "." thousands groups, "," decimals
	norm := s
	if strings.Contains(norm, ",") {
		norm = strings.ReplaceAll(norm, ".", "")
		norm = strings.ReplaceAll(norm, ",", ".")
	}
	if d, err := decimal.NewFromString(norm); err == nil {
		return d
	}

	log.Warn().Str("value", s).Msg("finance: unparseable amount coerced to 0")
	return decimal.Zero
}
