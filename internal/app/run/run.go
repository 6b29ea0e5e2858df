package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/bankocr/internal/app"
	"github.com/John-Robertt/bankocr/internal/app/planner"
	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/infra/fsx"
	"github.com/John-Robertt/bankocr/internal/report"
	"github.com/John-Robertt/bankocr/internal/scan"
)

// Execute 执行一次 run，并返回对外稳定的 RunReport。
// 结构性错误（输入缺失/不可读、写入失败）降级为文件级 failed；单个文件失败不影响其他文件。
func Execute(ctx context.Context, eff config.EffectiveConfig) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出进度（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Input:     eff.Input,
		Output:    eff.Output,
		Format:    eff.Format,
		StartedAt: started,
		Files:     make([]domain.FileResult, 0, 8),
	}

	scanStarted := time.Now()
	files, err := scan.ScanInputs(eff.Input, scanExcludes(eff))
	if err != nil {
		rr.Files = append(rr.Files, inputFailed(eff.Input, err))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(scanStarted))
	}

	planStarted := time.Now()
	plans := make([]domain.FilePlan, 0, len(files))
	skipped := 0
	for _, f := range files {
		p, e := planner.PlanFile(eff, f)
		if e != nil {
			rr.Files = append(rr.Files, domain.FileResult{
				Src:       f.RelPath,
				Dst:       planner.ReportPath(eff, f),
				Status:    domain.StatusFailed,
				ErrorCode: domain.ErrCodeIOFailed,
				ErrorMsg:  fmt.Sprintf("读取报告状态失败：%v", e),
			})
			continue
		}
		if !p.NeedWrite {
			skipped++
			rr.Files = append(rr.Files, domain.FileResult{Src: f.RelPath, Dst: p.DstAbs, Status: domain.StatusSkipped})
			continue
		}
		plans = append(plans, p)
	}
	planner.SortPlans(plans)
	if obs != nil {
		obs.OnPhaseDone("plan", map[string]any{
			"files":   len(files),
			"write":   len(plans),
			"skipped": skipped,
		}, time.Since(planStarted))
	}

	// 执行阶段：按文件并发（worker pool），文件内的账号由 app.ProcessLines 再并发。
	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}
	if obs != nil {
		obs.OnPhaseDone("exec", map[string]any{
			"workers":     workers,
			"total_files": len(plans),
		}, 0)
	}

	type execResult struct {
		in  domain.InputFile
		res domain.FileResult
		dur time.Duration
	}

	jobs := make(chan domain.FilePlan)
	results := make(chan execResult, len(plans))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				oneStarted := time.Now()
				r := execOne(ctx, eff, rr.RunID, p)
				results <- execResult{in: p.Input, res: r, dur: time.Since(oneStarted)}
			}
		}()
	}

	go func() {
		for _, p := range plans {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Files = append(rr.Files, it.res)
		if obs != nil {
			obs.OnItemDone(done, len(plans), it.in, it.res, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, eff config.EffectiveConfig, runID string, p domain.FilePlan) domain.FileResult {
	res := domain.FileResult{
		Src:    p.Input.RelPath,
		Dst:    p.DstAbs,
		Status: domain.StatusProcessed, // 失败时覆盖
	}

	lines, err := scan.ReadLines(p.Input.AbsPath)
	if err != nil {
		return failWith(res, readErrCode(err), err.Error())
	}

	accounts, err := app.ProcessLines(ctx, lines, eff.Concurrency)
	if err != nil {
		return failWith(res, domain.ErrCodeIOFailed, fmt.Sprintf("处理被中断：%v", err))
	}

	b, err := report.Encode(eff.Format, report.Meta{Source: p.Input.RelPath, RunID: runID}, accounts)
	if err != nil {
		return failWith(res, domain.ErrCodeWriteFailed, fmt.Sprintf("生成报告失败：%v", err))
	}

	// 报告原子写入：失败时不会留下部分报告。
	if err := fsx.WriteFile(p.DstAbs, b); err != nil {
		if fsx.IsPathTypeConflict(err) {
			return failWith(res, domain.ErrCodeTargetConflict, err.Error())
		}
		return failWith(res, domain.ErrCodeWriteFailed, fmt.Sprintf("写入报告失败：%v", err))
	}

	res.Accounts = accounts
	return res
}

func failWith(res domain.FileResult, code, msg string) domain.FileResult {
	res.Status = domain.StatusFailed
	res.ErrorCode = code
	res.ErrorMsg = msg
	res.Accounts = nil
	return res
}

func readErrCode(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrCodeInputNotFound
	}
	return domain.ErrCodeIOFailed
}

func inputFailed(input string, err error) domain.FileResult {
	res := domain.FileResult{
		Src:       input,
		Status:    domain.StatusFailed,
		ErrorCode: readErrCode(err),
	}
	if res.ErrorCode == domain.ErrCodeInputNotFound {
		res.ErrorMsg = fmt.Sprintf("输入不存在：%q", input)
	} else {
		res.ErrorMsg = fmt.Sprintf("扫描输入失败：%v", err)
	}
	return res
}

// scanExcludes 在目录模式下额外排除报告目录，避免把 *.report.txt 当成输入。
func scanExcludes(eff config.EffectiveConfig) []string {
	out := append([]string(nil), eff.ExcludeDirs...)
	if !eff.InputIsDir || eff.Output == "" {
		return out
	}
	rel, err := filepath.Rel(eff.Input, eff.Output)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return out
	}
	return append(out, rel)
}
