package finance

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var wordDigits = [...]string{"không", "một", "hai", "ba", "bốn", "năm", "sáu", "bảy", "tám", "chín"}

// AmountInWords spells a đồng amount in Vietnamese for the "Bằng chữ" line
// of printed documents. Fractional parts are truncated: money on paper is
// whole đồng.
//
//	220000 → "Hai trăm hai mươi nghìn đồng"
func AmountInWords(d decimal.Decimal) string {
	n := d.IntPart()
	if n == 0 {
		return "Không đồng"
	}

	var words string
	if n < 0 {
		words = "âm " + intWords(-n, true)
	} else {
		words = intWords(n, true)
	}

	r, size := utf8.DecodeRuneInString(words)
	return string(unicode.ToUpper(r)) + words[size:] + " đồng"
}

// intWords splits n into base-1000 groups and recurses through the scale
// words. Leading marks the most significant group, which drops its zero
// hundreds ("hai mươi" rather than "không trăm hai mươi").
func intWords(n int64, leading bool) string {
	switch {
	case n >= 1_000_000_000:
		s := intWords(n/1_000_000_000, leading) + " tỷ"
		if rest := n % 1_000_000_000; rest > 0 {
			s += " " + intWords(rest, false)
		}
		return s
	case n >= 1_000_000:
		s := groupWords(int(n/1_000_000), !leading) + " triệu"
		if rest := n % 1_000_000; rest > 0 {
			s += " " + intWords(rest, false)
		}
		return s
	case n >= 1000:
		s := groupWords(int(n/1000), !leading) + " nghìn"
		if rest := n % 1000; rest > 0 {
			s += " " + intWords(rest, false)
		}
		return s
	default:
		return groupWords(int(n), !leading)
	}
}

// groupWords spells a group of three digits. With full set, a zero hundreds
// digit is still spoken ("không trăm lẻ năm" in 1.000.005).
func groupWords(n int, full bool) string {
	h, t, u := n/100, (n/10)%10, n%10

	var w []string
	if h > 0 || full {
		w = append(w, wordDigits[h], "trăm")
	}

	switch {
	case t >= 2:
		w = append(w, wordDigits[t], "mươi")
		switch u {
		case 0:
		case 1:
			w = append(w, "mốt")
		case 5:
			w = append(w, "lăm")
		default:
			w = append(w, wordDigits[u])
		}
	case t == 1:
		w = append(w, "mười")
		switch u {
		case 0:
		case 5:
			w = append(w, "lăm")
		default:
			w = append(w, wordDigits[u])
		}
	case u > 0:
		if len(w) > 0 {
			w = append(w, "lẻ")
		}
		w = append(w, wordDigits[u])
	}

	return strings.Join(w, " ")
}
