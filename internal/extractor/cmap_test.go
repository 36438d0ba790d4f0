package extractor

import "testing"

func TestParseCMapBFChar(t *testing.T) {
	gm := glyphMap{}
	parseCMapInto(gm, `
/CIDInit /ProcSet findresource begin
begincmap
2 beginbfchar
<0041> <0042>
<0102> <0053>
endbfchar
endcmap
`)

	if gm["0041"] != "B" {
		t.Errorf("0041 = %q", gm["0041"])
	}
	if gm["0102"] != "S" {
		t.Errorf("0102 = %q", gm["0102"])
	}
}

func TestParseCMapBFRange(t *testing.T) {
	gm := glyphMap{}
	parseCMapInto(gm, `
1 beginbfrange
<0010> <0013> <0061>
endbfrange
`)

	want := map[string]string{"0010": "a", "0011": "b", "0012": "c", "0013": "d"}
	for k, v := range want {
		if gm[k] != v {
			t.Errorf("%s = %q, want %q", k, gm[k], v)
		}
	}
}

func TestParseCMapBFRangeArray(t *testing.T) {
	gm := glyphMap{}
	parseCMapInto(gm, `
1 beginbfrange
<0001> <0003> [<0058> <0059> <005A>]
endbfrange
`)

	if gm["0001"] != "X" || gm["0002"] != "Y" || gm["0003"] != "Z" {
		t.Errorf("array range: %v", gm)
	}
}

func TestGlyphMapDecode(t *testing.T) {
	gm := glyphMap{"0041": "H", "0042": "i"}

	if got := gm.decode([]byte{0x00, 0x41, 0x00, 0x42}); got != "Hi" {
		t.Errorf("decode: %q", got)
	}

	// Unknown two-byte codes retry the leading byte; with no hit the
	// code is skipped, not garbled.
	if got := gm.decode([]byte{0x00, 0x41, 0xFF, 0xFF}); got != "H" {
		t.Errorf("decode with miss: %q", got)
	}

	if got := (glyphMap{}).decode([]byte{0x41}); got != "" {
		t.Errorf("empty map: %q", got)
	}
}

func TestGlyphMapDecodeSingleByte(t *testing.T) {
	gm := glyphMap{"61": "α"}

	// Mapped codes translate; unmapped printable ASCII passes through.
	if got := gm.decode([]byte("aZ")); got != "αZ" {
		t.Errorf("decode: %q", got)
	}
}

func TestUTF16BEString(t *testing.T) {
	if got := utf16BEString("0041"); got != "A" {
		t.Errorf("basic: %q", got)
	}
	// Surrogate pair for U+1D11E (musical G clef).
	if got := utf16BEString("D834DD1E"); got != "\U0001D11E" {
		t.Errorf("surrogate: %q", got)
	}
	if got := utf16BEString("zz"); got != "" {
		t.Errorf("bad hex: %q", got)
	}
}
