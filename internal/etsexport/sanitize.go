package etsexport

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// mojibakeMarker is 'Ã' (U+00C3): the single-byte reading of the UTF-8 lead
// byte 0xC3, which starts the encoding of every code point in U+00C0..U+00FF.
const mojibakeMarker = 'Ã'

// Range of UTF-8 continuation bytes that follow a 0xC3 lead byte.
const (
	continuationFirst = 0x80
	continuationLast  = 0xBF

	// repairBase is the code point encoded by 0xC3 0x80.
	repairBase = 0xC0

	// nbspByte is the continuation byte of 'à', read as a no-break space and
	// frequently collapsed to a plain space on the way through a UI.
	nbspByte = 0xA0
)

// continuationBytes maps the character a continuation byte turns into when
// misread, to the byte value itself. Both the Latin-1 and the Windows-1252
// reading are accepted, so "Ã‰" and "Ã\u0089" both repair to 'É'.
var continuationBytes = buildContinuationBytes()

func buildContinuationBytes() map[rune]byte {
	m := make(map[rune]byte, 2*(continuationLast-continuationFirst+1))
	for b := continuationFirst; b <= continuationLast; b++ {
		m[rune(b)] = byte(b)
		if r := charmap.Windows1252.DecodeByte(byte(b)); r != utf8.RuneError {
			m[r] = byte(b)
		}
	}
	m[' '] = nbspByte
	return m
}

// wordFix is a whole-word correction applied after the generic repair.
type wordFix struct {
	pattern *regexp.Regexp
	to      string
}

// wordFixes catch names that recur in generated projects and that the
// generic pass cannot repair: a wrong accent that survived an earlier repair,
// or a bare marker whose follower byte was dropped along the way.
var wordFixes = []wordFix{
	newWordFix("scénes", "scènes"),
	newWordFix("scÃnes", "scènes"),
	newWordFix("atenuaciÃn", "atenuación"),
	newWordFix("posiciÃn", "posición"),
}

func newWordFix(from, to string) wordFix {
	return wordFix{
		pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(from)),
		to:      to,
	}
}

// Sanitize repairs text that was UTF-8 encoded and then decoded again as a
// single-byte code page ("scÃ¨nes" → "scènes") and returns it in NFC.
//
// Strings without the 'Ã' marker are returned unchanged; this is the common
// case and does no allocation. Sanitize never fails.
func Sanitize(raw string) string {
	if !strings.ContainsRune(raw, mojibakeMarker) {
		return raw
	}

	fixed := repairMojibake(raw)
	fixed = applyWordFixes(fixed)
	return norm.NFC.String(fixed)
}

// repairMojibake replaces each marker + continuation pair with the code point
// the pair originally encoded. The follower decides which letter is meant, so
// several different uppercase letters in one string are all repaired. A
// marker that is not followed by a continuation character is kept as is.
func repairMojibake(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == mojibakeMarker && i+size < len(s) {
			next, nextSize := utf8.DecodeRuneInString(s[i+size:])
			if cb, ok := continuationBytes[next]; ok {
				b.WriteRune(repairBase + rune(cb-continuationFirst))
				i += size + nextSize
				continue
			}
		}
		b.WriteString(s[i : i+size])
		i += size
	}

	return b.String()
}

func applyWordFixes(s string) string {
	for _, f := range wordFixes {
		s = f.pattern.ReplaceAllStringFunc(s, func(match string) string {
			return matchInitialCase(match, f.to)
		})
	}
	return s
}

// matchInitialCase carries the casing of match over to repl: an all upper
// case match gives an upper case replacement, a capitalised match a
// capitalised one, and anything else the replacement as written.
func matchInitialCase(match, repl string) string {
	if match == strings.ToUpper(match) && match != strings.ToLower(match) {
		return strings.ToUpper(repl)
	}
	r, _ := utf8.DecodeRuneInString(match)
	if unicode.IsUpper(r) {
		return CapitalizeFirst(repl)
	}
	return repl
}

// CapitalizeFirst upper-cases the first character of s and leaves the rest
// untouched. Full Unicode case mapping is used, so a leading 'ß' becomes "SS".
//
// Applied to main and middle group names only; address names keep the
// caller's casing.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	// A Caser is stateful, so one is created per call.
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}
