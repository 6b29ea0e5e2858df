package domain

import "unicode/utf8"

const (
	// GlyphSize 是单个数字字形的边长（3 行 x 3 列）。
	GlyphSize = 3
	// AccountDigits 是每个账号的数字位数。
	AccountDigits = 9
	// RowWidth 是一行字形文本在补齐后的固定宽度（9 位 x 3 列）。
	RowWidth = AccountDigits * GlyphSize
)

// Row 是补齐到 RowWidth 的一行字形文本。值类型：读入时补齐，此后不再修改。
type Row [RowWidth]byte

// foreignCell 占据一个非 ASCII 字符所在的格子；它不会出现在任何标准字形里。
const foreignCell = 0xFF

// NewRow 把一行原始文本规范化为 Row：按字符计列，不足 RowWidth 的部分右侧补空格，
// 超出部分截断。非 ASCII 字符（含非法 UTF-8 字节）只占一格，记为 foreignCell。
func NewRow(line string) Row {
	var r Row
	n := 0
	for _, c := range line {
		if n == RowWidth {
			break
		}
		if c < utf8.RuneSelf {
			r[n] = byte(c)
		} else {
			r[n] = foreignCell
		}
		n++
	}
	for ; n < RowWidth; n++ {
		r[n] = ' '
	}
	return r
}

func (r Row) String() string { return string(r[:]) }

// Glyph 是一个数字位置的 3x3 字符网格。数组类型可直接比较，用作 map key。
type Glyph [GlyphSize][GlyphSize]byte

// String 以三行文本（换行分隔）展示字形，便于测试失败时定位。
func (g Glyph) String() string {
	b := make([]byte, 0, GlyphSize*(GlyphSize+1))
	for i, row := range g {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, row[:]...)
	}
	return string(b)
}

// AccountBlock 是同一个账号的字形行（正常情况下恰好 3 行）。
//
// 不变量：
// - 1 <= len(Rows) <= GlyphSize
// - 只有文件末尾不完整的分组才会少于 GlyphSize 行
type AccountBlock struct {
	Rows []Row
}

// Complete 表示该分组是否包含完整的 3 行。
func (b AccountBlock) Complete() bool { return len(b.Rows) == GlyphSize }
