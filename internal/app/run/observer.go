package run

import (
	"time"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
)

// Observer 把运行进度/阶段/文件结果从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - Observer 的实现必须并发安全：OnItemDone 可能来自不同 goroutine 的结果
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（scan/plan/exec）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在某个输入文件处理完成时调用。
	OnItemDone(idx, total int, in domain.InputFile, res domain.FileResult, dur time.Duration)
}
