package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// extractRawStreams is the layout-less fallback: it walks the PDF byte
// stream directly, decompresses content streams, and pulls text out of
// the Tj/TJ operators, decoding glyph codes through any ToUnicode CMap
// tables the file carries. Used when the structured library returns
// garbage, typically CIDFont/Type0 encodings it cannot resolve.
func extractRawStreams(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	streams := contentStreams(data)
	if len(streams) == 0 {
		return nil, nil
	}

	glyphs := collectGlyphMap(streams)

	var pages []string
	for _, stream := range streams {
		text := streamText(inflate(stream), glyphs)
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages, nil
}

// contentStreams returns the decompress-ready payload of every
// stream...endstream block.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	offset := 0
	for {
		idx := bytes.Index(data[offset:], []byte("stream"))
		if idx < 0 {
			return streams
		}
		start := offset + idx + len("stream")
		for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
			start++
		}
		endIdx := bytes.Index(data[start:], []byte("endstream"))
		if endIdx < 0 {
			return streams
		}
		if endIdx > 0 {
			streams = append(streams, data[start:start+endIdx])
		}
		offset = start + endIdx + len("endstream")
	}
}

func inflate(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

var (
	hexShowOp     = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	literalShowOp = regexp.MustCompile(`\(((?:[^)\\]|\\.)*)\)\s*(?:Tj|')`)
	arrayShowOp   = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	hexFragment   = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	litFragment   = regexp.MustCompile(`\(((?:[^)\\]|\\.)*)\)`)
	positionOp    = regexp.MustCompile(`[\d.\-]+\s+[\d.\-]+\s+T[dD]`)
)

// streamText walks a content stream's BT..ET blocks line by line,
// treating Td/TD and T* as line breaks.
func streamText(data []byte, glyphs glyphMap) string {
	content := string(data)
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") {
		return ""
	}

	var lines []string
	var cur strings.Builder
	breakLine := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	for _, op := range strings.Split(content, "\n") {
		op = strings.TrimSpace(op)
		if op == "T*" || positionOp.MatchString(op) {
			breakLine()
		}
		for _, m := range hexShowOp.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeHexText(m[1], glyphs))
		}
		for _, m := range literalShowOp.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeLiteralText(m[1], glyphs))
		}
		for _, m := range arrayShowOp.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeShowArray(m[1], glyphs))
		}
	}
	breakLine()
	return strings.Join(lines, "\n")
}

// decodeShowArray handles the TJ form, an array mixing strings with
// kerning numbers; the fragments concatenate in array order.
func decodeShowArray(array string, glyphs glyphMap) string {
	type frag struct {
		pos  int
		text string
	}
	var frags []frag
	for _, idx := range hexFragment.FindAllStringSubmatchIndex(array, -1) {
		frags = append(frags, frag{idx[0], decodeHexText(array[idx[2]:idx[3]], glyphs)})
	}
	for _, idx := range litFragment.FindAllStringSubmatchIndex(array, -1) {
		frags = append(frags, frag{idx[0], decodeLiteralText(array[idx[2]:idx[3]], glyphs)})
	}
	for i := 1; i < len(frags); i++ {
		for j := i; j > 0 && frags[j].pos < frags[j-1].pos; j-- {
			frags[j], frags[j-1] = frags[j-1], frags[j]
		}
	}
	var sb strings.Builder
	for _, f := range frags {
		sb.WriteString(f.text)
	}
	return sb.String()
}

func decodeHexText(hexStr string, glyphs glyphMap) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return ""
	}
	if text := glyphs.decode(raw); text != "" {
		return text
	}
	// No CMap hit: try UTF-16BE, then plain ASCII.
	if len(raw) >= 2 && len(raw)%2 == 0 {
		var sb strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			cp := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(cp) || cp == ' ' {
				sb.WriteRune(cp)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return printableOnly(string(raw))
}

func decodeLiteralText(s string, glyphs glyphMap) string {
	decoded := unescapePDFString(s)
	if text := glyphs.decode([]byte(decoded)); text != "" && mostlyPrintable(text) {
		return text
	}
	return printableOnly(decoded)
}

// unescapePDFString resolves backslash escapes, including octal codes.
func unescapePDFString(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			buf.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		case '(', ')', '\\':
			buf.WriteByte(c)
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for j := 0; j < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(s[i]-'0')
				}
				if val < 256 {
					buf.WriteByte(byte(val))
				}
			} else {
				buf.WriteByte(c)
			}
		}
	}
	return buf.String()
}

func printableOnly(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s))
}

func mostlyPrintable(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	n := 0
	for _, r := range runes {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			n++
		}
	}
	return float64(n)/float64(len(runes)) > 0.5
}
