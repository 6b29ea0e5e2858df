package ocr

import "github.com/John-Robertt/bankocr/internal/domain"

// Decode 逐位查表，位置之间互不影响。
func Decode(glyphs [domain.AccountDigits]domain.Glyph) domain.Number {
	var n domain.Number
	for i, g := range glyphs {
		n[i] = Lookup(g)
	}
	return n
}

// DecodeBlock 是 Split + Decode 的组合。
func DecodeBlock(b domain.AccountBlock) domain.Number {
	return Decode(Split(b))
}
