package render

// Style holds best-effort text hints applied to runs the renderer writes.
type Style struct {
	TitleSize    int
	SubtitleSize int
	BodySize     int

	TitleFont    string
	SubtitleFont string
	BodyFont     string

	// Hex RGB without '#'.
	TitleColor  string
	BodyColor   string
	AccentColor string
}

func DefaultStyle() Style {
	return Style{
		TitleSize:    36,
		SubtitleSize: 24,
		BodySize:     18,
		TitleFont:    "Arial",
		SubtitleFont: "Arial",
		BodyFont:     "Arial",
		TitleColor:   "000000",
		BodyColor:    "404040",
		AccentColor:  "0066CC",
	}
}

func (s Style) orDefault() Style {
	d := DefaultStyle()
	if s.TitleSize <= 0 {
		s.TitleSize = d.TitleSize
	}
	if s.SubtitleSize <= 0 {
		s.SubtitleSize = d.SubtitleSize
	}
	if s.BodySize <= 0 {
		s.BodySize = d.BodySize
	}
	if s.TitleFont == "" {
		s.TitleFont = d.TitleFont
	}
	if s.SubtitleFont == "" {
		s.SubtitleFont = d.SubtitleFont
	}
	if s.BodyFont == "" {
		s.BodyFont = d.BodyFont
	}
	if !validHex(s.TitleColor) {
		s.TitleColor = d.TitleColor
	}
	if !validHex(s.BodyColor) {
		s.BodyColor = d.BodyColor
	}
	if !validHex(s.AccentColor) {
		s.AccentColor = d.AccentColor
	}
	return s
}

func validHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// rgb splits a validated hex triple.
func rgb(hex string) (uint8, uint8, uint8) {
	v := func(i int) uint8 {
		return hexNibble(hex[i])<<4 | hexNibble(hex[i+1])
	}
	return v(0), v(2), v(4)
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
