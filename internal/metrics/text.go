package metrics

import "unicode"

// TextSize describes the shape of a piece of text without retaining it.
type TextSize struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// MeasureText scans s once. Words are runs of non-space runes; an empty
// string has zero lines and a trailing newline starts a new, empty line.
func MeasureText(s string) TextSize {
	ts := TextSize{Bytes: len(s)}
	if s == "" {
		return ts
	}
	ts.Lines = 1
	inWord := false
	for _, r := range s {
		ts.Runes++
		if r == '\n' {
			ts.Lines++
		}
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			ts.Words++
			inWord = true
		}
	}
	return ts
}

// Fields returns the sizes as a telemetry payload.
func (ts TextSize) Fields() map[string]any {
	return map[string]any{
		"bytes": ts.Bytes,
		"runes": ts.Runes,
		"words": ts.Words,
		"lines": ts.Lines,
	}
}
