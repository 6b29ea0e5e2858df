// Package report 把账号结论编码为报告文件内容。
//
// text 是默认格式：每个账号一行 "<账号><后缀>"，行之间用单个 '\n' 连接，末行没有换行。
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
)

// Meta 是 json/html 报告里附带的来源信息；text 格式忽略它。
type Meta struct {
	Source string
	RunID  string
}

// Encode 按 format 编码 accounts（保持输入顺序）。
func Encode(format string, meta Meta, accounts []domain.AccountStatus) ([]byte, error) {
	switch format {
	case config.FormatText, "":
		return Text(accounts), nil
	case config.FormatJSON:
		return JSON(meta, accounts)
	case config.FormatHTML:
		return HTML(meta, accounts)
	default:
		return nil, fmt.Errorf("未知报告格式：%q", format)
	}
}

// Text 生成文本报告。
func Text(accounts []domain.AccountStatus) []byte {
	lines := make([]string, 0, len(accounts))
	for _, a := range accounts {
		lines = append(lines, a.Line())
	}
	return []byte(strings.Join(lines, "\n"))
}

type jsonAccount struct {
	Line       string `json:"line"`
	Number     string `json:"number"`
	Status     string `json:"status"`
	Recognized bool   `json:"recognized"`
	Valid      bool   `json:"valid"`
}

type jsonReport struct {
	Source   string        `json:"source"`
	RunID    string        `json:"run_id,omitempty"`
	Accounts []jsonAccount `json:"accounts"`
}

// JSON 生成 JSON 报告（缩进，末尾带换行）。
func JSON(meta Meta, accounts []domain.AccountStatus) ([]byte, error) {
	out := jsonReport{
		Source:   meta.Source,
		RunID:    meta.RunID,
		Accounts: make([]jsonAccount, 0, len(accounts)),
	}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, jsonAccount{
			Line:       a.Line(),
			Number:     a.Number,
			Status:     a.Kind(),
			Recognized: a.Recognized,
			Valid:      a.Valid,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
