package run

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/ocr"
)

// corruptFirstDigit 把第 idx 个账号第一位字形的中间行改成非法图案。
func corruptFirstDigit(t *testing.T, text string, idx int) string {
	t.Helper()
	lines := strings.Split(text, "\n")
	row := idx*ocr.LinesPerAccount + 1
	lines[row] = "|x|" + lines[row][3:]
	return strings.Join(lines, "\n")
}

func writeInput(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("写入输入失败：%v", err)
	}
}

func TestExecute_SingleFile_TextReport(t *testing.T) {
	root := t.TempDir()
	text, err := ocr.Render("345882865", "457508000", "111111111")
	if err != nil {
		t.Fatalf("Render 失败：%v", err)
	}
	in := filepath.Join(root, "data", "bankaccounts.txt")
	writeInput(t, in, corruptFirstDigit(t, text, 1))

	eff, err := config.LoadEffective(root, config.CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	rr := Execute(context.Background(), eff)
	if rr.Summary.Failed != 0 || rr.Summary.Processed != 1 {
		t.Fatalf("不期望失败：summary=%+v files=%+v", rr.Summary, rr.Files)
	}
	if rr.RunID == "" {
		t.Fatalf("run_id 不能为空")
	}

	b, err := os.ReadFile(filepath.Join(root, "data", "bankreport.txt"))
	if err != nil {
		t.Fatalf("读取报告失败：%v", err)
	}
	want := "345882865\n?57508000 ILL\n111111111 ERR"
	if string(b) != want {
		t.Fatalf("报告内容不符合预期：\n got=%q\nwant=%q", string(b), want)
	}

	s := rr.Summary
	if s.Accounts != 3 || s.OK != 1 || s.Illegible != 1 || s.Invalid != 1 {
		t.Fatalf("账号统计不正确：%+v", s)
	}
}

func TestExecute_MissingInput_NoReport(t *testing.T) {
	root := t.TempDir()
	eff, err := config.LoadEffective(root, config.CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	rr := Execute(context.Background(), eff)
	if rr.Summary.Failed != 1 || len(rr.Files) != 1 {
		t.Fatalf("期望 1 个失败条目：%+v", rr.Files)
	}
	if rr.Files[0].ErrorCode != domain.ErrCodeInputNotFound {
		t.Fatalf("期望 %q，实际 %q", domain.ErrCodeInputNotFound, rr.Files[0].ErrorCode)
	}
	if _, err := os.Stat(eff.Output); !os.IsNotExist(err) {
		t.Fatalf("输入缺失时不应写出报告，Stat err=%v", err)
	}
}

func TestExecute_ReportPathConflict(t *testing.T) {
	root := t.TempDir()
	text, _ := ocr.Render("345882865")
	writeInput(t, filepath.Join(root, "data", "bankaccounts.txt"), text)
	// 报告路径被一个目录占用。
	if err := os.MkdirAll(filepath.Join(root, "data", "bankreport.txt"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := config.LoadEffective(root, config.CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	rr := Execute(context.Background(), eff)
	if len(rr.Files) != 1 || rr.Files[0].ErrorCode != domain.ErrCodeTargetConflict {
		t.Fatalf("期望 target_conflict：%+v", rr.Files)
	}
	if rr.Summary.Accounts != 0 {
		t.Fatalf("失败的文件不应计入账号：%+v", rr.Summary)
	}
}

func TestExecute_DirectoryMode_SkipAndForce(t *testing.T) {
	root := t.TempDir()
	scans := filepath.Join(root, "scans")

	a, _ := ocr.Render("345882865")
	b, _ := ocr.Render("111111111", "000000051")
	writeInput(t, filepath.Join(scans, "a.txt"), a)
	writeInput(t, filepath.Join(scans, "2026", "b.txt"), b)

	eff, err := config.LoadEffective(root, config.CLIArgs{Input: "scans", Format: "json"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !eff.InputIsDir {
		t.Fatalf("scans 应被识别为目录输入")
	}

	rr := Execute(context.Background(), eff)
	if rr.Summary.Processed != 2 || rr.Summary.Accounts != 3 {
		t.Fatalf("首次运行应处理 2 个文件：%+v", rr.Summary)
	}
	for _, want := range []string{
		filepath.Join(scans, "out", "a.report.json"),
		filepath.Join(scans, "out", "2026", "b.report.json"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("缺少报告 %q：%v", want, err)
		}
	}

	// 报告不旧于输入：第二次运行全部跳过，且不会把 out/ 下的报告当成输入。
	rr = Execute(context.Background(), eff)
	if rr.Summary.Skipped != 2 || rr.Summary.Processed != 0 || len(rr.Files) != 2 {
		t.Fatalf("第二次运行应全部跳过：%+v", rr.Summary)
	}

	eff.Force = true
	rr = Execute(context.Background(), eff)
	if rr.Summary.Processed != 2 {
		t.Fatalf("force 时应全部重写：%+v", rr.Summary)
	}
	if rr.Files[0].Src != filepath.Join("2026", "b.txt") {
		t.Fatalf("files 应按 src 排序：%q", rr.Files[0].Src)
	}
}

func TestExecute_TimesAreUTC(t *testing.T) {
	root := t.TempDir()
	eff, _ := config.LoadEffective(root, config.CLIArgs{})
	rr := Execute(context.Background(), eff)
	if rr.StartedAt.Location() != time.UTC || rr.FinishedAt.Location() != time.UTC {
		t.Fatalf("时间必须是 UTC")
	}
}
