package domain

import "strings"

// UnrecognizedMark 是无法识别的数字在账号文本中的占位字符。
const UnrecognizedMark = '?'

// Digit 是单个数字位置的解码结果：Known(0..9) 或 Unrecognized。
//
// 零值即 Unrecognized；数值只能通过 Value 取出，避免无法识别的位置悄悄参与求和。
type Digit struct {
	v     uint8
	known bool
}

// Unrecognized 表示字形没有匹配任何已知数字。
var Unrecognized = Digit{}

// Known 构造一个已识别数字；n 超出 0..9 时返回 Unrecognized。
func Known(n int) Digit {
	if n < 0 || n > 9 {
		return Unrecognized
	}
	return Digit{v: uint8(n), known: true}
}

// Value 返回数字值；ok=false 表示该位置无法识别。
func (d Digit) Value() (n int, ok bool) {
	return int(d.v), d.known
}

func (d Digit) Recognized() bool { return d.known }

func (d Digit) Rune() rune {
	if !d.known {
		return UnrecognizedMark
	}
	return rune('0' + d.v)
}

func (d Digit) String() string { return string(d.Rune()) }

// Number 是一个账号解码后的 9 位数字（从左到右，最高位在前）。
type Number [AccountDigits]Digit

// ParseNumber 把 "345882865" 这类文本解析为 Number；'?' 解析为 Unrecognized。
// 长度不是 9 或包含其他字符时 ok=false。
func ParseNumber(s string) (Number, bool) {
	var n Number
	if len(s) != AccountDigits {
		return n, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			n[i] = Known(int(c - '0'))
		case c == UnrecognizedMark:
			n[i] = Unrecognized
		default:
			return Number{}, false
		}
	}
	return n, true
}

func (n Number) String() string {
	var sb strings.Builder
	sb.Grow(AccountDigits)
	for _, d := range n {
		sb.WriteRune(d.Rune())
	}
	return sb.String()
}

// Recognized 当且仅当所有位置都已识别。
func (n Number) Recognized() bool {
	for _, d := range n {
		if !d.known {
			return false
		}
	}
	return true
}
