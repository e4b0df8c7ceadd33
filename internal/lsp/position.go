package lsp

import (
	"strings"
	"unicode"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func utf16ColToByte(lineText string, utf16Col int) int {
	if utf16Col <= 0 {
		return 1
	}
	count := 0
	for idx, r := range lineText {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if count+n > utf16Col {
			return idx + 1
		}
		count += n
	}
	return len(lineText) + 1
}

func byteColToUTF16(lineText string, byteCol int) uint32 {
	if byteCol <= 1 {
		return 0
	}
	return uint32(utf16Len(lineText[:min(byteCol-1, len(lineText))]))
}

func utf16Len(s string) int {
	count := 0
	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		count += n
	}
	return count
}

// EndPositionUTF16 returns the LSP position at the end of text, using UTF-16 code units.
func EndPositionUTF16(text string) protocol.Position {
	lines := splitLines(text)
	last := lines[len(lines)-1]
	return protocol.Position{Line: uint32(len(lines) - 1), Character: uint32(utf16Len(last))}
}

func FullDocumentRange(text string) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   EndPositionUTF16(text),
	}
}

// span is a run of identifier bytes on one line, [start, end).
type span struct {
	start, end int
}

// wordSpans splits a line into entity names. IDs may contain dots, colons
// and operator characters, so only YAML punctuation and a colon followed by
// a space end a word.
func wordSpans(line string) []span {
	var out []span
	start := -1
	flush := func(i int) {
		if start >= 0 && i > start {
			out = append(out, span{start, i})
		}
		start = -1
	}
	for i, r := range line {
		if r == '#' && (i == 0 || line[i-1] == ' ') {
			flush(i)
			break
		}
		sep := unicode.IsSpace(r) || strings.ContainsRune(",{}[]\"'", r)
		if r == ':' && (i+1 == len(line) || line[i+1] == ' ') {
			sep = true
		}
		if sep {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(line))
	return out
}

// WordAt returns the entity name under pos.
func WordAt(text string, pos protocol.Position) (string, protocol.Range, bool) {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return "", protocol.Range{}, false
	}
	line := lines[pos.Line]
	at := utf16ColToByte(line, int(pos.Character)) - 1
	for _, s := range wordSpans(line) {
		if at >= s.start && at < s.end {
			return line[s.start:s.end], spanRange(line, int(pos.Line), s), true
		}
	}
	return "", protocol.Range{}, false
}

func spanRange(line string, lineIdx int, s span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(lineIdx), Character: byteColToUTF16(line, s.start+1)},
		End:   protocol.Position{Line: uint32(lineIdx), Character: byteColToUTF16(line, s.end+1)},
	}
}
