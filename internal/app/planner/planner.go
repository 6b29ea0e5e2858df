package planner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
)

// ReportPath 返回输入文件对应的报告路径。
//
// - 单文件输入：报告路径就是 eff.Output
// - 目录输入：<Output>/<RelPath 去扩展名>.report<ext>，保留子目录结构避免重名
func ReportPath(eff config.EffectiveConfig, in domain.InputFile) string {
	if !eff.InputIsDir {
		return eff.Output
	}
	rel := in.RelPath
	rel = rel[:len(rel)-len(filepath.Ext(rel))]
	return filepath.Join(eff.Output, rel+".report"+config.Ext(eff.Format))
}

// PlanFile 基于报告现状生成确定性的执行计划（只做 stat，不做任何写入）。
//
// 报告已存在、是普通文件、且修改时间不早于输入时跳过；force 总是重写。
// 报告路径是目录等异常情况不在这里判断，交给写入阶段报告 target_conflict。
func PlanFile(eff config.EffectiveConfig, in domain.InputFile) (domain.FilePlan, error) {
	p := domain.FilePlan{
		Input:     in,
		DstAbs:    ReportPath(eff, in),
		NeedWrite: true,
	}
	if eff.Force {
		return p, nil
	}

	fi, err := os.Stat(p.DstAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return domain.FilePlan{}, err
	}
	if fi.Mode().IsRegular() && !fi.ModTime().Before(in.ModTime) {
		p.NeedWrite = false
	}
	return p, nil
}

// SortPlans 按输入相对路径排序，保证稳定顺序。
func SortPlans(plans []domain.FilePlan) {
	sort.Slice(plans, func(i, j int) bool { return plans[i].Input.RelPath < plans[j].Input.RelPath })
}
