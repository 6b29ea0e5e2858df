package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/John-Robertt/bankocr/internal/config"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("等待超时")
}

func TestWatcher_SingleFileTriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bankaccounts.txt")
	eff := config.EffectiveConfig{Input: in, Output: filepath.Join(dir, "bankreport.txt")}

	w, err := New(eff)
	if err != nil {
		t.Fatalf("创建 watcher 失败：%v", err)
	}
	defer w.Close()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, 50*time.Millisecond, func() { calls.Add(1) }) }()

	// 报告文件的写入不应触发。
	if err := os.WriteFile(eff.Output, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if err := os.WriteFile(in, []byte("a"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
}

func TestWatcher_DirectoryIgnoresOutDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	eff := config.EffectiveConfig{Input: dir, InputIsDir: true, Output: out}

	w, err := New(eff)
	if err != nil {
		t.Fatalf("创建 watcher 失败：%v", err)
	}
	defer w.Close()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, 50*time.Millisecond, func() { calls.Add(1) })
	}()

	if err := os.WriteFile(filepath.Join(out, "a.report.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("报告目录的变化不应触发运行")
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ctx 取消后 Run 应返回")
	}
}

func TestIgnoredDir(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data")
	w := &Watcher{eff: config.EffectiveConfig{
		Input:       root,
		InputIsDir:  true,
		Output:      filepath.Join(root, "reports"),
		ExcludeDirs: []string{"archive"},
	}}
	for p, want := range map[string]bool{
		filepath.Join(root, "reports"):         true,
		filepath.Join(root, "out"):             true,
		filepath.Join(root, "archive", "2025"): true,
		filepath.Join(root, "2026"):            false,
	} {
		if got := w.ignoredDir(p); got != want {
			t.Fatalf("ignoredDir(%q)=%v，期望 %v", p, got, want)
		}
	}
}
