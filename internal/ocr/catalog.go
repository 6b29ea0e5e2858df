// Package ocr 把定宽的 OCR 文本还原为账号数字：分组（Segment）、切分字形（Split）、
// 查表解码（Decode），以及反向的渲染（Render）。
package ocr

import "github.com/John-Robertt/bankocr/internal/domain"

// canonical 是 0..9 的标准字形，按数字顺序排列。
var canonical = [10][domain.GlyphSize]string{
	{" _ ", "| |", "|_|"},
	{"   ", "  |", "  |"},
	{" _ ", " _|", "|_ "},
	{" _ ", " _|", " _|"},
	{"   ", "|_|", "  |"},
	{" _ ", "|_ ", " _|"},
	{" _ ", "|_ ", "|_|"},
	{" _ ", "  |", "  |"},
	{" _ ", "|_|", "|_|"},
	{" _ ", "|_|", " _|"},
}

var (
	catalog  = buildCatalog()
	patterns = buildPatterns()
)

func buildPatterns() [10]domain.Glyph {
	var out [10]domain.Glyph
	for n, rows := range canonical {
		for i, r := range rows {
			copy(out[n][i][:], r)
		}
	}
	return out
}

func buildCatalog() map[domain.Glyph]domain.Digit {
	m := make(map[domain.Glyph]domain.Digit, len(canonical))
	for n, g := range buildPatterns() {
		m[g] = domain.Known(n)
	}
	return m
}

// Lookup 按逐格完全相等匹配标准字形；没有匹配时返回 domain.Unrecognized。
func Lookup(g domain.Glyph) domain.Digit {
	if d, ok := catalog[g]; ok {
		return d
	}
	return domain.Unrecognized
}

// Pattern 返回数字 n 的标准字形；n 不在 0..9 时 ok=false。
func Pattern(n int) (domain.Glyph, bool) {
	if n < 0 || n >= len(patterns) {
		return domain.Glyph{}, false
	}
	return patterns[n], true
}
