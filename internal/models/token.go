package models

// Token is a positioned piece of text extracted from a statement page.
// Coordinates are in page units with the origin at the top-left, so Top
// increases downwards. Tokens are supplied by the extraction front end
// and never modified by the pipeline.
type Token struct {
	Text   string  `json:"text"`
	Page   int     `json:"page"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	// Bold is set when the text layer reports a bold font for this token.
	// Optional; strategies that rely on it fall back to geometry when the
	// extractor cannot tell.
	Bold bool `json:"bold,omitempty"`
}

// Width returns the horizontal extent of the token.
func (t Token) Width() float64 {
	return t.X1 - t.X0
}

// CenterX returns the horizontal midpoint of the token's bounding box.
func (t Token) CenterX() float64 {
	return (t.X0 + t.X1) / 2
}

// Line is an ordered run of tokens sharing a Y-band on one page.
type Line struct {
	Page   int
	Top    float64
	Bottom float64
	Tokens []Token
}

// Text joins the line's tokens with single spaces, left to right.
func (l Line) Text() string {
	n := 0
	for _, t := range l.Tokens {
		n += len(t.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, t := range l.Tokens {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

// MinX returns the left edge of the leftmost token, or 0 for an empty line.
func (l Line) MinX() float64 {
	if len(l.Tokens) == 0 {
		return 0
	}
	return l.Tokens[0].X0
}

// MaxX returns the right edge of the rightmost token, or 0 for an empty line.
func (l Line) MaxX() float64 {
	if len(l.Tokens) == 0 {
		return 0
	}
	max := l.Tokens[0].X1
	for _, t := range l.Tokens[1:] {
		if t.X1 > max {
			max = t.X1
		}
	}
	return max
}

// HasBoldToken reports whether any token on the line is bold.
func (l Line) HasBoldToken() bool {
	for _, t := range l.Tokens {
		if t.Bold {
			return true
		}
	}
	return false
}
