// Package watch 监听输入变化并触发重新运行（bankocr watch）。
package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/scan"
)

// DefaultDelay 是去抖间隔：编辑器保存常常连续触发多次写事件。
const DefaultDelay = 500 * time.Millisecond

// Watcher 监听单个输入文件（实际监听其所在目录），或输入目录及其子目录。
type Watcher struct {
	eff config.EffectiveConfig
	fw  *fsnotify.Watcher
}

// New 创建 watcher 并注册监听目录；返回后即可保证后续的文件变化会被观察到。
func New(eff config.EffectiveConfig) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{eff: eff, fw: fw}

	if !eff.InputIsDir {
		// fsnotify 对目录的事件最稳定；按文件名过滤。
		if err := fw.Add(filepath.Dir(eff.Input)); err != nil {
			fw.Close()
			return nil, err
		}
		return w, nil
	}

	err = filepath.WalkDir(eff.Input, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != eff.Input && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Close() error { return w.fw.Close() }

// Run 阻塞直到 ctx 取消。相关输入被写入/创建后，静默 delay 再调用 fn；
// fn 在本 goroutine 内串行执行，不会并发重入。
func (w *Watcher) Run(ctx context.Context, delay time.Duration, fn func()) error {
	if delay <= 0 {
		delay = DefaultDelay
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.eff.InputIsDir && w.isNewDir(ev.Name) {
				if err := w.fw.Add(ev.Name); err != nil {
					log.Printf("watch: 无法监听新目录 %q：%v", ev.Name, err)
				}
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fn()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if !w.eff.InputIsDir {
		return abs == w.eff.Input
	}
	if isUnder(abs, w.eff.Output) {
		return false
	}
	return scan.IsInput(w.eff.Input, abs, w.eff.ExcludeDirs)
}

func (w *Watcher) isNewDir(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return false
	}
	return !w.ignoredDir(abs)
}

// ignoredDir：报告目录与 exclude_dirs 不监听。
func (w *Watcher) ignoredDir(path string) bool {
	if isUnder(path, w.eff.Output) || isUnder(path, filepath.Join(w.eff.Input, scan.OutDirName)) {
		return true
	}
	for _, x := range w.eff.ExcludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if !filepath.IsAbs(x) {
			x = filepath.Join(w.eff.Input, x)
		}
		if isUnder(path, filepath.Clean(x)) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if base == "" {
		return false
	}
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	return path == base || strings.HasPrefix(path, base+string(filepath.Separator))
}
