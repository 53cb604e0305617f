package game

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxExponent caps scientific notation so "1e300" cannot end a game by
// overflow rather than by arithmetic.
const maxExponent = 18

// maxChunkLen bounds the tokens considered when scanning a message for an
// embedded number in extreme mode.
const maxChunkLen = 32

// ParseCount extracts the integer a message is counting. Normally the whole
// message must be one number; in extreme mode any chunk of the message may
// carry it ("we hit 420 bois" counts). The second return is false when no
// usable number is present, which the engine treats as Ignored.
//
// Accepted forms: plain integers, unicode decimal digits, "," "_" and
// spaces as separators, and decimal or scientific notation when the value
// is exactly integral ("2.0", "1e3"). A leading "+" is rejected, as is
// anything outside int64.
func ParseCount(content string, extreme bool) (int64, bool) {
	text := strings.TrimSpace(content)
	if v, ok := parseToken(text); ok {
		return v, true
	}
	if !extreme {
		return 0, false
	}
	for _, chunk := range chunks(text) {
		if len(chunk) > maxChunkLen {
			continue
		}
		if v, ok := parseToken(chunk); ok {
			return v, true
		}
	}
	return 0, false
}

var chunkSep = regexp.MustCompile(`[^\w\-\+\.,\s]`)

func chunks(text string) []string {
	return strings.Fields(chunkSep.ReplaceAllString(text, " "))
}

var separators = strings.NewReplacer(",", "", "_", "", " ", "")

func parseToken(tok string) (int64, bool) {
	tok = normalizeDigits(strings.TrimSpace(tok))
	if tok == "" || strings.HasPrefix(tok, "+") {
		return 0, false
	}
	clean := separators.Replace(tok)
	if strings.ContainsAny(clean, "eE.") {
		return parseDecimal(clean)
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDecimal handles decimal and scientific forms, accepting only values
// that are exactly integral: "2.0" is 2, "1.5e1" is 15, "1.5" is nothing.
func parseDecimal(s string) (int64, bool) {
	mant := s
	exp := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		var err error
		exp, err = strconv.Atoi(s[i+1:])
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return 0, false
		}
		mant = s[:i]
	}

	neg := strings.HasPrefix(mant, "-")
	mant = strings.TrimPrefix(mant, "-")

	intPart, fracPart := mant, ""
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		intPart, fracPart = mant[:i], mant[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, false
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, false
	}

	digits := intPart + fracPart
	scale := exp - len(fracPart)
	switch {
	case scale > 0:
		digits += strings.Repeat("0", scale)
	case scale < 0:
		cut := len(digits) + scale
		var dropped string
		if cut <= 0 {
			dropped, digits = digits, "0"
		} else {
			dropped, digits = digits[cut:], digits[:cut]
		}
		if strings.Trim(dropped, "0") != "" {
			return 0, false // fractional remainder
		}
	}

	if neg {
		digits = "-" + digits
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// noDigits maps the digit-valued runes outside category Nd (superscripts
// and subscripts) that still read as digits, so "²" counts as 2.
var noDigits = map[rune]byte{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'₀': '0', '₁': '1', '₂': '2', '₃': '3', '₄': '4',
	'₅': '5', '₆': '6', '₇': '7', '₈': '8', '₉': '9',
}

// normalizeDigits rewrites non-ASCII decimal digits (fullwidth, Arabic-Indic,
// Devanagari, superscript, ...) as their ASCII equivalents so "１２３"
// counts as 123.
func normalizeDigits(s string) string {
	ascii := true
	for _, r := range s {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := noDigits[r]; ok {
			b.WriteByte(d)
			continue
		}
		if (r >= '0' && r <= '9') || !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(byte('0' + digitValue(r)))
	}
	return b.String()
}

// digitValue returns the numeric value of a rune in category Nd. Each run
// in the Nd range table is a contiguous 0-9 sequence, so the offset within
// the run is the value.
func digitValue(r rune) int {
	if r <= 0xFFFF {
		v := uint16(r)
		for _, rng := range unicode.Nd.R16 {
			if v >= rng.Lo && v <= rng.Hi {
				return int((v - rng.Lo) % 10)
			}
		}
		return 0
	}
	v := uint32(r)
	for _, rng := range unicode.Nd.R32 {
		if v >= rng.Lo && v <= rng.Hi {
			return int((v - rng.Lo) % 10)
		}
	}
	return 0
}
