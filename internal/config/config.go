package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultInput 是无参运行时的输入路径（相对 cwd）。
	DefaultInput = "data/bankaccounts.txt"
	// DefaultReportName 是单文件输入时报告文件名（不含扩展名），与输入同目录。
	DefaultReportName = "bankreport"
	// DefaultFormat 是报告格式的内置默认值。
	DefaultFormat = FormatText
	// DefaultConcurrency 是并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// FileNames 是 cwd 下按顺序尝试的配置文件名（都用 YAML 解析；JSON 是 YAML 的子集）。
var FileNames = []string{"bankocr.yaml", "bankocr.yml", "bankocr.json"}

// CLIArgs 是 CLI 暴露的入口参数；空串表示未指定，Force 保留“是否显式指定”。
type CLIArgs struct {
	Input  string
	Output string
	Format string
	DBPath string

	Force    bool
	ForceSet bool
}

// FileConfig 对应 bankocr.yaml 的解析结构。
type FileConfig struct {
	Input       string   `yaml:"input"`
	Output      string   `yaml:"output"`
	Format      string   `yaml:"format"`
	Concurrency int      `yaml:"concurrency"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	DB          string   `yaml:"db"`
	Force       *bool    `yaml:"force"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Input 是输入文件或目录（clean + absolute）。
	Input      string
	InputIsDir bool
	// Output：单文件输入时是报告文件路径；目录输入时是报告目录。
	Output string

	Format      string
	Concurrency int
	ExcludeDirs []string
	Force       bool

	// DBPath 非空时把运行结果写入 SQLite 历史库。
	DBPath string

	// ConfigFile 是实际读取的配置文件；未找到时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Ext 返回报告格式对应的文件扩展名。
func Ext(format string) string {
	switch format {
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// LoadEffective 发现并读取 cwd 下的配置文件（可选），然后与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - input/output/format/db：CLI > config > 默认
// - force：CLI --force/--force=false > config > 默认 false
// - concurrency/exclude_dirs：仅由 config 控制
//
// CLI 路径相对 cwd；配置文件中的路径相对配置文件所在目录。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	fc, cfgPath, err := discover(cwdAbs)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgDir := cwdAbs
	if cfgPath != "" {
		cfgDir = filepath.Dir(cfgPath)
	}

	input := absCleanFrom(cwdAbs, DefaultInput)
	if strings.TrimSpace(cli.Input) != "" {
		input = absCleanFrom(cwdAbs, cli.Input)
	} else if strings.TrimSpace(fc.Input) != "" {
		input = absCleanFrom(cfgDir, fc.Input)
	}

	format := DefaultFormat
	if strings.TrimSpace(cli.Format) != "" {
		format = strings.ToLower(strings.TrimSpace(cli.Format))
	} else if strings.TrimSpace(fc.Format) != "" {
		format = strings.ToLower(strings.TrimSpace(fc.Format))
	}
	if err := ValidateFormat(format); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// 输入不存在时按文件处理：真正的错误留给 run 阶段报告为 input_not_found。
	isDir := false
	if fi, err := os.Stat(input); err == nil && fi.IsDir() {
		isDir = true
	}

	output := ""
	if strings.TrimSpace(cli.Output) != "" {
		output = absCleanFrom(cwdAbs, cli.Output)
	} else if strings.TrimSpace(fc.Output) != "" {
		output = absCleanFrom(cfgDir, fc.Output)
	} else if isDir {
		output = filepath.Join(input, "out")
	} else {
		output = filepath.Join(filepath.Dir(input), DefaultReportName+Ext(format))
	}
	if output == input {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("output 不能与 input 相同：%q", input)}
	}

	force := false
	if cli.ForceSet {
		force = cli.Force
	} else if fc.Force != nil {
		force = *fc.Force
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	dbPath := ""
	if strings.TrimSpace(cli.DBPath) != "" {
		dbPath = absCleanFrom(cwdAbs, cli.DBPath)
	} else if strings.TrimSpace(fc.DB) != "" {
		dbPath = absCleanFrom(cfgDir, fc.DB)
	}

	return EffectiveConfig{
		Input:       input,
		InputIsDir:  isDir,
		Output:      output,
		Format:      format,
		Concurrency: concurrency,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
		Force:       force,
		DBPath:      dbPath,
		ConfigFile:  cfgPath,
	}, nil
}

// ValidateFormat 校验报告格式。
func ValidateFormat(f string) error {
	switch f {
	case FormatText, FormatJSON, FormatHTML:
		return nil
	case "":
		return fmt.Errorf("format 不能为空")
	default:
		return fmt.Errorf("format 只能是 text、json 或 html，实际是 %q", f)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// discover 依次尝试 FileNames，返回第一个存在的配置文件。
// 都不存在时返回零值且不报错；cfgPath 在出错时指向出错的文件。
func discover(dir string) (fc FileConfig, cfgPath string, err error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		b, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return FileConfig{}, p, err
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return FileConfig{}, p, err
		}
		return fc, p, nil
	}
	return FileConfig{}, "", nil
}
