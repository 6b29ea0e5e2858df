package domain

import "time"

// InputFile 描述一次扫描得到的账号输入文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - RelPath 相对扫描根目录；单文件输入时为文件名
type InputFile struct {
	AbsPath string
	RelPath string
	Base    string // filename without ext
	Size    int64
	ModTime time.Time
}

// FilePlan 是对单个输入文件的最小执行计划。
type FilePlan struct {
	Input  InputFile
	DstAbs string
	// NeedWrite=false 表示报告已存在且不旧于输入，可以跳过。
	NeedWrite bool
}
