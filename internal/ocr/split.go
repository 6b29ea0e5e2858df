package ocr

import "github.com/John-Robertt/bankocr/internal/domain"

// Split 把一个账号分组切成 9 个 3x3 字形：第 p 个字形取每行的 [3p, 3p+3) 列。
// 分组缺失的行在字形里保持 0 字节，不会匹配任何标准字形。
func Split(b domain.AccountBlock) [domain.AccountDigits]domain.Glyph {
	var out [domain.AccountDigits]domain.Glyph
	for r, row := range b.Rows {
		if r >= domain.GlyphSize {
			break
		}
		for p := range out {
			copy(out[p][r][:], row[p*domain.GlyphSize:(p+1)*domain.GlyphSize])
		}
	}
	return out
}

// Join 是 Split 的逆操作：把 9 个字形按列拼回 3 行。
func Join(glyphs [domain.AccountDigits]domain.Glyph) [domain.GlyphSize]domain.Row {
	var rows [domain.GlyphSize]domain.Row
	for p, g := range glyphs {
		for r := range rows {
			copy(rows[r][p*domain.GlyphSize:], g[r][:])
		}
	}
	return rows
}
