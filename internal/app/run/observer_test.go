package run

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/ocr"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	phases     []string
	items      []string
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnItemDone(idx, total int, in domain.InputFile, res domain.FileResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, in.RelPath)
}

func TestExecuteWithObserver_EmitsPhaseAndItemEvents(t *testing.T) {
	root := t.TempDir()
	text, _ := ocr.Render("345882865")
	writeInput(t, filepath.Join(root, "in.txt"), text)

	obs := &recordObserver{}
	_ = ExecuteWithObserver(context.Background(), config.EffectiveConfig{
		Input:       filepath.Join(root, "in.txt"),
		Output:      filepath.Join(root, "bankreport.txt"),
		Format:      config.FormatText,
		Concurrency: 1,
	}, obs)

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}
	wantPhases := []string{"scan", "plan", "exec"}
	if !reflect.DeepEqual(obs.phases, wantPhases) {
		t.Fatalf("阶段事件不符合预期：got=%v want=%v", obs.phases, wantPhases)
	}
	if len(obs.items) != 1 || obs.items[0] != "in.txt" {
		t.Fatalf("条目事件不符合预期：items=%v", obs.items)
	}
}

func TestExecuteWithObserver_NilObserver_SameResultAsExecute(t *testing.T) {
	root := t.TempDir()
	text, _ := ocr.Render("345882865", "111111111")
	writeInput(t, filepath.Join(root, "in.txt"), text)

	cfg := config.EffectiveConfig{
		Input:       filepath.Join(root, "in.txt"),
		Output:      filepath.Join(root, "bankreport.txt"),
		Format:      config.FormatText,
		Concurrency: 2,
		Force:       true,
	}

	a := Execute(context.Background(), cfg)
	b := ExecuteWithObserver(context.Background(), cfg, nil)

	// 时间与 run_id 每次都不同；对比时归零。
	a.StartedAt, a.FinishedAt, a.RunID = time.Time{}, time.Time{}, ""
	b.StartedAt, b.FinishedAt, b.RunID = time.Time{}, time.Time{}, ""

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("nil observer 不应改变结果：\nExecute=%+v\nWithObs=%+v", a, b)
	}
}
