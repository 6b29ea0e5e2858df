package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/bankocr/internal/domain"
)

func TestParseRunArgs(t *testing.T) {
	ra, err := parseRunArgs([]string{"in.txt", "--out=r.html", "--format", "HTML", "--force", "--db", "h.db"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Input != "in.txt" || ra.Output != "r.html" || ra.Format != "HTML" || ra.DBPath != "h.db" {
		t.Fatalf("解析结果不符合预期：%+v", ra)
	}
	if !ra.Force || !ra.ForceSet {
		t.Fatalf("期望 --force 生效：%+v", ra)
	}

	for _, args := range [][]string{
		{"a.txt", "b.txt"},
		{"--format", "pdf"},
		{"--out"},
		{"--force=maybe"},
		{"--verbose"},
	} {
		if _, err := parseRunArgs(args); err == nil {
			t.Fatalf("期望 %q 解析失败", args)
		}
	}
}

func TestProgressUI_ItemLines(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)

	p.OnPhaseDone("exec", map[string]any{"workers": 2, "total_files": 2}, 0)
	p.OnItemDone(1, 2, domain.InputFile{RelPath: "a.txt", Size: 2048}, domain.FileResult{
		Status: domain.StatusProcessed,
		Accounts: []domain.AccountStatus{
			{Number: "345882865", Recognized: true, Valid: true},
			{Number: "?23456789", Recognized: false},
			{Number: "111111111", Recognized: true},
		},
	}, 1500*time.Millisecond)
	p.OnItemDone(2, 2, domain.InputFile{RelPath: "b.txt"}, domain.FileResult{
		Status:    domain.StatusFailed,
		ErrorCode: domain.ErrCodeIOFailed,
		ErrorMsg:  "permission denied",
	}, 0)

	out := buf.String()
	for _, want := range []string{
		"执行: workers=2 total_files=2",
		"[1/2] a.txt OK accounts=3 ok=1 ill=1 err=1 size=2.0 kB (1.5s)",
		"[2/2] b.txt FAIL io_failed: permission denied (0.0s)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if p.tickerStarted {
		t.Fatalf("全部完成后 ticker 应已停止")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  abcdef  ", 5); got != "ab..." {
		t.Fatalf("期望 ab...，实际 %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("期望 abc，实际 %q", got)
	}
}
