package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanInputs_ExcludeOutDir(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "out", "a.report.txt"))
	touch(t, filepath.Join(root, "in", "a.txt"))
	touch(t, filepath.Join(root, "in", "ignore.csv"))
	touch(t, filepath.Join(root, "in", ".hidden.txt"))

	got, err := ScanInputs(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个输入文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("in", "a.txt")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
	if got[0].Base != "a" {
		t.Fatalf("期望 base=a，实际=%q", got[0].Base)
	}
}

func TestScanInputs_ExcludeDirsFromConfig(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "archive", "old.txt"))
	touch(t, filepath.Join(root, "new.TXT"))

	got, err := ScanInputs(root, []string{"archive"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].RelPath != "new.TXT" {
		t.Fatalf("排除规则不生效：%+v", got)
	}
}

func TestScanInputs_SingleFile(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "bankaccounts.dat")
	touch(t, p)

	got, err := ScanInputs(p, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].AbsPath != p || got[0].RelPath != "bankaccounts.dat" {
		t.Fatalf("单文件输入不符合预期：%+v", got)
	}
}

func TestScanInputs_Missing(t *testing.T) {
	_, err := ScanInputs(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if !os.IsNotExist(err) {
		t.Fatalf("期望 not-exist 错误，实际 %v", err)
	}
}

func TestIsInput(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data")
	other := filepath.Join(string(filepath.Separator), "other", "a.txt")
	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "a.txt"), true},
		{filepath.Join(root, "sub", "b.txt"), true},
		{filepath.Join(root, "out", "a.report.txt"), false},
		{filepath.Join(root, "skip", "c.txt"), false},
		{filepath.Join(root, ".a.txt.tmp-1"), false},
		{filepath.Join(root, "a.csv"), false},
		{other, false},
	}
	for _, tc := range cases {
		if got := IsInput(root, tc.path, []string{"skip"}); got != tc.want {
			t.Fatalf("IsInput(%q)=%v，期望 %v", tc.path, got, tc.want)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
