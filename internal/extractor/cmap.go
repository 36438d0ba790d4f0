package extractor

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// glyphMap translates the character codes of a custom-encoded font to
// Unicode, built from the ToUnicode CMap streams embedded in the PDF.
// Keys are uppercase hex code strings, usually one or two bytes wide.
type glyphMap map[string]string

var (
	bfCharBlock  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlock = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	hexToken     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

// collectGlyphMap scans every decompressed stream for CMap tables and
// merges them into one map.
func collectGlyphMap(streams [][]byte) glyphMap {
	merged := glyphMap{}
	for _, stream := range streams {
		content := string(inflate(stream))
		if !strings.Contains(content, "beginbfchar") && !strings.Contains(content, "beginbfrange") {
			continue
		}
		parseCMapInto(merged, content)
	}
	return merged
}

// parseCMapInto reads the bfchar and bfrange sections of a ToUnicode
// CMap. bfchar pairs map one code to one value; bfrange maps a code
// interval either to consecutive values from a start point or to an
// explicit array of values.
func parseCMapInto(gm glyphMap, content string) {
	for _, block := range bfCharBlock.FindAllStringSubmatch(content, -1) {
		tokens := hexToken.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(tokens); i += 2 {
			if uni := utf16BEString(tokens[i+1][1]); uni != "" {
				gm[strings.ToUpper(tokens[i][1])] = uni
			}
		}
	}

	for _, block := range bfRangeBlock.FindAllStringSubmatch(content, -1) {
		for _, line := range strings.Split(block[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.Contains(line, "[") {
				parseRangeArray(gm, line)
				continue
			}
			tokens := hexToken.FindAllStringSubmatch(line, -1)
			if len(tokens) < 3 {
				continue
			}
			start, err1 := strconv.ParseInt(tokens[0][1], 16, 64)
			end, err2 := strconv.ParseInt(tokens[1][1], 16, 64)
			dst, err3 := strconv.ParseInt(tokens[2][1], 16, 64)
			if err1 != nil || err2 != nil || err3 != nil || end < start {
				continue
			}
			width := len(tokens[0][1])
			dstWidth := len(tokens[2][1])
			for code := start; code <= end; code++ {
				key := paddedHex(code, width)
				if uni := utf16BEString(paddedHex(dst+(code-start), dstWidth)); uni != "" {
					gm[key] = uni
				}
			}
		}
	}
}

// parseRangeArray handles the <start> <end> [<u1> <u2> ...] form.
func parseRangeArray(gm glyphMap, line string) {
	bracket := strings.Index(line, "[")
	head := hexToken.FindAllStringSubmatch(line[:bracket], -1)
	if len(head) < 2 {
		return
	}
	start, err := strconv.ParseInt(head[0][1], 16, 64)
	if err != nil {
		return
	}
	width := len(head[0][1])
	for i, tok := range hexToken.FindAllStringSubmatch(line[bracket:], -1) {
		if uni := utf16BEString(tok[1]); uni != "" {
			gm[paddedHex(start+int64(i), width)] = uni
		}
	}
}

// decode maps raw string bytes through the glyph table. The code width
// comes from the table's own keys; a multi-byte miss retries the first
// byte alone, since some fonts mix one- and two-byte codes.
func (gm glyphMap) decode(raw []byte) string {
	if len(gm) == 0 {
		return ""
	}
	codeLen := 1
	for k := range gm {
		codeLen = len(k) / 2
		break
	}
	if codeLen < 1 {
		codeLen = 1
	}

	var sb strings.Builder
	for i := 0; i <= len(raw)-codeLen; {
		chunk := raw[i : i+codeLen]
		if uni, ok := gm[strings.ToUpper(hex.EncodeToString(chunk))]; ok {
			sb.WriteString(uni)
			i += codeLen
			continue
		}
		if codeLen > 1 {
			if uni, ok := gm[strings.ToUpper(hex.EncodeToString(chunk[:1]))]; ok {
				sb.WriteString(uni)
				i++
				continue
			}
		}
		if codeLen == 1 && chunk[0] >= 32 && chunk[0] < 127 {
			sb.WriteByte(chunk[0])
		}
		i += codeLen
	}
	return sb.String()
}

// utf16BEString decodes a hex string as big-endian UTF-16, handling
// surrogate pairs.
func utf16BEString(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	data, err := hex.DecodeString(h)
	if err != nil || len(data)%2 != 0 {
		return ""
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

func paddedHex(v int64, width int) string {
	return strings.ToUpper(fmt.Sprintf("%0*x", width, v))
}
