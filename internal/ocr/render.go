package ocr

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/bankocr/internal/domain"
)

// Render 把若干账号渲染为 OCR 输入文本（每个账号 3 行字形 + 1 行空白分隔，
// 每行以 '\n' 结尾），即 Segment -> Decode 的逆过程。
//
// number 必须是 9 位数字；'?' 等无法渲染的字符会返回错误。
func Render(numbers ...string) (string, error) {
	var sb strings.Builder
	for _, s := range numbers {
		rows, err := RenderRows(s)
		if err != nil {
			return "", err
		}
		for _, r := range rows {
			sb.WriteString(r.String())
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// RenderRows 渲染单个账号的 3 行字形。
func RenderRows(number string) ([domain.GlyphSize]domain.Row, error) {
	n, ok := domain.ParseNumber(number)
	if !ok || !n.Recognized() {
		return [domain.GlyphSize]domain.Row{}, fmt.Errorf("账号必须是 %d 位数字：%q", domain.AccountDigits, number)
	}
	var glyphs [domain.AccountDigits]domain.Glyph
	for i, d := range n {
		v, _ := d.Value()
		glyphs[i], _ = Pattern(v)
	}
	return Join(glyphs), nil
}
