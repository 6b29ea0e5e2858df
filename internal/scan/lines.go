package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxLineBytes 是单行保留的最大字节数；正常的字形行只有 27 字节。
const maxLineBytes = 1 << 20

// ReadLines 打开并完整读取 path，返回去掉行尾换行符的行序列。
// 文件在所有路径上都会被关闭；读取失败时不返回部分结果。
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := ParseLines(f)
	if err != nil {
		return nil, fmt.Errorf("读取 %q 失败：%w", path, err)
	}
	return lines, nil
}

// ParseLines 从 r 读取全部行。行尾的 "\n"（以及 CRLF 中的 "\r"）被去掉，
// 其余字符原样保留；单行超过 maxLineBytes 的部分直接丢弃（字形行之后还会截断到 27 列）。
func ParseLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)

	lines := make([]string, 0, 64)
	var cur []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		if room := maxLineBytes - len(cur); room > 0 {
			cur = append(cur, chunk[:min(len(chunk), room)]...)
		}
		if isPrefix {
			continue
		}
		lines = append(lines, string(cur))
		cur = cur[:0]
	}
}
