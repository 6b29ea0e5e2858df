package ocr

import "github.com/John-Robertt/bankocr/internal/domain"

// LinesPerAccount 是每个账号在输入中占用的行数：3 行字形 + 1 行分隔。
const LinesPerAccount = domain.GlyphSize + 1

// Segment 把扁平的行序列按 4 行一组还原为账号分组（保持输入顺序）。
//
// 规则：
// - 下标 ≡ 3 (mod 4) 的行是分隔行，直接丢弃（不参与补齐，也不检查内容）
// - 其余行补齐/截断到 domain.RowWidth
// - 末尾不完整的分组照常输出，只包含实际存在的行
func Segment(lines []string) []domain.AccountBlock {
	blocks := make([]domain.AccountBlock, 0, (len(lines)+LinesPerAccount-1)/LinesPerAccount)
	for i, line := range lines {
		pos := i % LinesPerAccount
		if pos == domain.GlyphSize {
			continue
		}
		if pos == 0 {
			blocks = append(blocks, domain.AccountBlock{Rows: make([]domain.Row, 0, domain.GlyphSize)})
		}
		b := &blocks[len(blocks)-1]
		b.Rows = append(b.Rows, domain.NewRow(line))
	}
	return blocks
}
