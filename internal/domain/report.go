package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

const (
	ErrCodeInputNotFound  = "input_not_found"
	ErrCodeIOFailed       = "io_failed"
	ErrCodeWriteFailed    = "write_failed"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeConfigInvalid  = "config_invalid"
)

// RunReport 是对外稳定输出（stdout JSON / history）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Format string `json:"format"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Files   []FileResult  `json:"files"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	Accounts  int `json:"accounts"`
	OK        int `json:"ok"`
	Illegible int `json:"illegible"`
	Invalid   int `json:"invalid"`
}

// FileResult 是单个输入文件的处理结果。Accounts 保持输入顺序。
type FileResult struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Status string `json:"status"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Accounts []AccountStatus `json:"accounts"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) files 按 src 稳定排序；src=="" 的合成条目排在最后
// 3) summary 由 files 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Files, func(i, j int) bool {
		a := r.Files[i].Src
		b := r.Files[j].Src
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, f := range r.Files {
		switch f.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		for _, a := range f.Accounts {
			s.Accounts++
			switch a.Kind() {
			case AccountOK:
				s.OK++
			case AccountIllegible:
				s.Illegible++
			case AccountInvalid:
				s.Invalid++
			}
		}
	}
	r.Summary = s
}

// MarshalJSON 集中约束输出稳定性：nil 切片输出为 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Files == nil {
		a.Files = []FileResult{}
	}
	for i := range a.Files {
		if a.Files[i].Accounts == nil {
			a.Files[i].Accounts = []AccountStatus{}
		}
	}
	return json.Marshal(a)
}
