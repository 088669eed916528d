package codec

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMarker is U+200E LEFT-TO-RIGHT MARK.
const DefaultMarker rune = '\u200E'

// Codec encodes and decodes text with a fixed marker. The zero value is not
// usable; construct with New or Default. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	marker    rune
	markerStr string
}

var defaultCodec = &Codec{marker: DefaultMarker, markerStr: string(DefaultMarker)}

// Default returns the codec for DefaultMarker.
func Default() *Codec { return defaultCodec }

// New returns a codec for marker. The marker must be a Unicode format
// character (category Cf) so it renders as nothing, and must not be
// whitespace, which would be lost when encoding re-splits words.
func New(marker rune) (*Codec, error) {
	if err := ValidateMarker(marker); err != nil {
		return nil, err
	}
	return &Codec{marker: marker, markerStr: string(marker)}, nil
}

// ValidateMarker checks that r can serve as a marker.
func ValidateMarker(r rune) error {
	if r == utf8.RuneError || !utf8.ValidRune(r) {
		return fmt.Errorf("%w: U+%04X is not a valid code point", ErrVisibleMarker, r)
	}
	if unicode.IsSpace(r) {
		return fmt.Errorf("%w: U+%04X is whitespace", ErrVisibleMarker, r)
	}
	if !unicode.Is(unicode.Cf, r) {
		return fmt.Errorf("%w: U+%04X", ErrVisibleMarker, r)
	}
	return nil
}

// Marker returns the marker code point.
func (c *Codec) Marker() rune { return c.marker }

// Encode marks every word of text according to mode and joins the words
// with single spaces. Empty or all-whitespace input yields "".
//
// Text that already carries markers is encoded again as-is; each marked
// character then ends up followed by two markers. Text that is not valid
// UTF-8 is rejected with ErrInvalidUTF8.
func (c *Codec) Encode(text string, mode Mode) (string, error) {
	var mark func(*strings.Builder, string)
	switch mode {
	case PerCharacter:
		mark = c.markEach
	case MidWord:
		mark = c.markMiddle
	default:
		return "", &InvalidModeError{Mode: mode}
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.Grow(len(text) + len(words)*len(c.markerStr)*4)
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		mark(&b, w)
	}
	return b.String(), nil
}

func (c *Codec) markEach(b *strings.Builder, word string) {
	for len(word) > 0 {
		_, size := utf8.DecodeRuneInString(word)
		b.WriteString(word[:size])
		b.WriteString(c.markerStr)
		word = word[size:]
	}
}

// markMiddle places the marker after the code point at index n/2-1, or
// after the first code point for one-character words.
func (c *Codec) markMiddle(b *strings.Builder, word string) {
	split := utf8.RuneCountInString(word) / 2
	if split < 1 {
		split = 1
	}
	i := 0
	for off := range word {
		if i == split {
			b.WriteString(word[:off])
			b.WriteString(c.markerStr)
			b.WriteString(word[off:])
			return
		}
		i++
	}
	b.WriteString(word)
	b.WriteString(c.markerStr)
}

// Decode removes every marker from text. It never fails; text without
// markers is returned unchanged.
func (c *Codec) Decode(text string) string {
	if !strings.Contains(text, c.markerStr) {
		return text
	}
	return strings.ReplaceAll(text, c.markerStr, "")
}

// Count returns the number of markers in text.
func (c *Codec) Count(text string) int {
	return strings.Count(text, c.markerStr)
}

// Encode encodes text with the default codec.
func Encode(text string, mode Mode) (string, error) {
	return defaultCodec.Encode(text, mode)
}

// Decode decodes text with the default codec.
func Decode(text string) string {
	return defaultCodec.Decode(text)
}

// NormalizeWhitespace collapses whitespace runs to single spaces and trims
// both ends. It is the image of the whitespace handling done by Encode.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
