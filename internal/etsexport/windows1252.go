package etsexport

import "golang.org/x/text/unicode/norm"

// replacementByte stands in for every code point above U+00FF.
const replacementByte = '?'

// latin1Max is the last code point written as its own byte value.
const latin1Max = 0xFF

// EncodeWindows1252 converts text to Windows-1252 bytes.
//
// The text is normalised to NFC first. Code points up to U+00FF, which
// include every accented Latin letter from À to ÿ, map to the byte of the
// same value. Anything above becomes '?', including the punctuation that
// Windows-1252 keeps in 0x80..0x9F (€, curly quotes, dashes), so each byte
// has exactly one source code point. The encoder never fails.
//
// U+0080..U+009F are written through as bytes 0x80..0x9F even though
// Windows-1252 assigns printable characters there. Names produced for ETS
// never contain C1 controls, so the byte-for-byte rule is kept for the whole
// Latin-1 range.
func EncodeWindows1252(text string) []byte {
	data, _ := EncodeWindows1252Count(text)
	return data
}

// EncodeWindows1252Count is EncodeWindows1252 that also reports how many code
// points were written as '?'.
func EncodeWindows1252Count(text string) (data []byte, replaced int) {
	normalized := norm.NFC.String(text)

	data = make([]byte, 0, len(normalized))
	for _, r := range normalized {
		if r >= 0 && r <= latin1Max {
			data = append(data, byte(r))
			continue
		}
		data = append(data, replacementByte)
		replaced++
	}

	return data, replaced
}
