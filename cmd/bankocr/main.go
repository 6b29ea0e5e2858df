package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/John-Robertt/bankocr/internal/app/run"
	"github.com/John-Robertt/bankocr/internal/config"
	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/infra/fsx"
	"github.com/John-Robertt/bankocr/internal/infra/history"
	"github.com/John-Robertt/bankocr/internal/ocr"
	"github.com/John-Robertt/bankocr/internal/watch"
)

func main() {
	args := os.Args[1:]

	// 无参运行：等价于 run，读取 data/bankaccounts.txt，写入 data/bankreport.txt。
	if len(args) == 0 {
		os.Exit(runCmd(nil))
	}
	if isHelp(args[0]) {
		printUsage(os.Stdout)
		return
	}

	var code int
	switch args[0] {
	case "run":
		code = runCmd(args[1:])
	case "watch":
		code = watchCmd(args[1:])
	case "encode":
		code = encodeCmd(args[1:])
	case "history":
		code = historyCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage(os.Stderr)
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage(os.Stdout)
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage(os.Stderr)
		return 2
	}

	eff, err := loadConfig(ra)
	if err != nil {
		emitReport(reportForConfigError(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(ctx, eff, obs)

	code := 0
	if err := saveHistory(ctx, eff, rr); err != nil {
		fmt.Fprintf(os.Stderr, "写入历史库失败：%v\n", err)
		code = 1
	}

	emitReport(rr)
	if rr.Summary.Failed > 0 {
		code = 1
	}
	return code
}

func watchCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage(os.Stdout)
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage(os.Stderr)
		return 2
	}

	eff, err := loadConfig(ra)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	w, err := watch.New(eff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法监听 %q：%v\n", eff.Input, err)
		return 1
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	once := func() {
		rr := run.Execute(ctx, eff)
		if err := saveHistory(ctx, eff, rr); err != nil {
			log.Printf("watch: 写入历史库失败：%v", err)
		}
		log.Printf("watch: %s", summaryLine(rr))
		for _, f := range rr.Files {
			if f.Status == domain.StatusFailed {
				log.Printf("watch: %s %s: %s", f.Src, f.ErrorCode, f.ErrorMsg)
			}
		}
	}

	log.Printf("watch: 监听 %s（Ctrl-C 退出）", eff.Input)
	once()
	if err := w.Run(ctx, watch.DefaultDelay, once); err != nil {
		fmt.Fprintf(os.Stderr, "watch 失败：%v\n", err)
		return 1
	}
	return 0
}

func encodeCmd(args []string) int {
	var (
		out     string
		numbers []string
	)
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case isHelp(a):
			printEncodeUsage(os.Stdout)
			return 0
		case a == "--out":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "参数错误：--out 需要一个值")
				return 2
			}
			i++
			out = args[i]
		case strings.HasPrefix(a, "--out="):
			out = strings.TrimPrefix(a, "--out=")
		case strings.HasPrefix(a, "-"):
			fmt.Fprintf(os.Stderr, "参数错误：未知参数 %q\n", a)
			return 2
		default:
			numbers = append(numbers, a)
		}
	}
	if len(numbers) == 0 {
		printEncodeUsage(os.Stderr)
		return 2
	}

	text, err := ocr.Render(numbers...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n", err)
		return 2
	}
	if out == "" {
		fmt.Fprint(os.Stdout, text)
		return 0
	}
	if err := fsx.WriteFile(out, []byte(text)); err != nil {
		fmt.Fprintf(os.Stderr, "写入 %q 失败：%v\n", out, err)
		return 1
	}
	return 0
}

func historyCmd(args []string) int {
	var (
		dbPath  string
		account string
		limit   = 10
	)
	for i := 0; i < len(args); i++ {
		a := args[i]
		var val string
		switch {
		case isHelp(a):
			printHistoryUsage(os.Stdout)
			return 0
		case a == "--db" || a == "--limit" || a == "--account":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "参数错误：%s 需要一个值\n", a)
				return 2
			}
			i++
			val = args[i]
		case strings.HasPrefix(a, "--db="), strings.HasPrefix(a, "--limit="), strings.HasPrefix(a, "--account="):
			a, val, _ = strings.Cut(a, "=")
		default:
			fmt.Fprintf(os.Stderr, "参数错误：未知参数 %q\n", a)
			return 2
		}
		switch a {
		case "--db":
			dbPath = val
		case "--account":
			account = val
		case "--limit":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "参数错误：--limit 必须是正整数，实际是 %q\n", val)
				return 2
			}
			limit = n
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	eff, err := config.LoadEffective(cwd, config.CLIArgs{DBPath: dbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if eff.DBPath == "" {
		fmt.Fprintln(os.Stderr, "未指定历史库：使用 --db 或在 bankocr.yaml 中配置 db")
		return 2
	}

	st, err := history.Open(eff.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer st.Close()

	if account != "" {
		kinds, err := st.AccountHistory(context.Background(), account)
		if err != nil {
			fmt.Fprintf(os.Stderr, "读取历史失败：%v\n", err)
			return 1
		}
		if len(kinds) == 0 {
			fmt.Fprintf(os.Stdout, "%s: 无记录\n", account)
			return 0
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", account, strings.Join(kinds, " "))
		return 0
	}

	runs, err := st.RecentRuns(context.Background(), limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取历史失败：%v\n", err)
		return 1
	}
	for _, r := range runs {
		s := r.Summary
		fmt.Fprintf(os.Stdout, "%s %s %s accounts=%d ok=%d ill=%d err=%d failed=%d %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.RunID, r.Format,
			s.Accounts, s.OK, s.Illegible, s.Invalid, s.Failed, r.Input,
		)
	}
	return 0
}

type runArgs struct {
	Input    string
	Output   string
	Format   string
	DBPath   string
	Force    bool
	ForceSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--out" || a == "--format" || a == "--db":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("%s 需要一个值", a)
			}
			i++
			if err := ra.set(a, args[i]); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "--out="), strings.HasPrefix(a, "--format="), strings.HasPrefix(a, "--db="):
			k, v, _ := strings.Cut(a, "=")
			if err := ra.set(k, v); err != nil {
				return runArgs{}, err
			}
		case a == "--force":
			ra.Force = true
			ra.ForceSet = true
		case strings.HasPrefix(a, "--force="):
			v := strings.TrimPrefix(a, "--force=")
			switch v {
			case "true":
				ra.Force = true
			case "false":
				ra.Force = false
			default:
				return runArgs{}, fmt.Errorf("--force 只能是 true 或 false，实际是 %q", v)
			}
			ra.ForceSet = true
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.Input != "" {
				return runArgs{}, fmt.Errorf("重复的输入：%q 与 %q", ra.Input, a)
			}
			ra.Input = a
		}
	}
	return ra, nil
}

func (ra *runArgs) set(flag, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s 不能为空", flag)
	}
	switch flag {
	case "--out":
		ra.Output = v
	case "--db":
		ra.DBPath = v
	case "--format":
		if err := config.ValidateFormat(strings.ToLower(v)); err != nil {
			return err
		}
		ra.Format = v
	}
	return nil
}

func loadConfig(ra runArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("读取当前目录失败：%w", err)}
	}
	return config.LoadEffective(cwd, config.CLIArgs{
		Input:    ra.Input,
		Output:   ra.Output,
		Format:   ra.Format,
		DBPath:   ra.DBPath,
		Force:    ra.Force,
		ForceSet: ra.ForceSet,
	})
}

func saveHistory(ctx context.Context, eff config.EffectiveConfig, rr domain.RunReport) error {
	if eff.DBPath == "" {
		return nil
	}
	st, err := history.Open(eff.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveRun(ctx, rr)
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  bankocr                      等价于 bankocr run（data/bankaccounts.txt -> data/bankreport.txt）
  bankocr run [input] [选项]    解码并校验账号，写出报告
  bankocr watch [input] [选项]  输入变化时自动重新运行
  bankocr encode <账号>...      把 9 位账号渲染为 OCR 文本
  bankocr history [--db path]  查看最近的运行记录（--account 查询单个账号）

使用 "bankocr run --help" 查看详细说明。
`)
}

func printRunUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  bankocr run|watch [input] [--out path] [--format text|json|html] [--force[=true|false]] [--db path]

参数：
  input       输入文件或目录（默认 data/bankaccounts.txt；目录模式扫描 *.txt）
  --out       报告路径（文件输入）或报告目录（目录输入）；默认与输入同目录的 bankreport.txt，或 <input>/out
  --format    报告格式：text|json|html（默认 text）
  --force     即使报告不旧于输入也重新生成
  --db        把运行结果写入 SQLite 历史库
  -h, --help  显示帮助
`)
}

func printEncodeUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  bankocr encode <9 位账号>... [--out path]
`)
}

func printHistoryUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  bankocr history [--db path] [--limit n]
  bankocr history [--db path] --account <账号>
`)
}

func summaryLine(rr domain.RunReport) string {
	s := rr.Summary
	return fmt.Sprintf("完成：processed=%d skipped=%d failed=%d accounts=%d ok=%d ill=%d err=%d",
		s.Processed, s.Skipped, s.Failed, s.Accounts, s.OK, s.Illegible, s.Invalid,
	)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, summaryLine(rr))
		for _, f := range rr.Files {
			switch f.Status {
			case domain.StatusFailed:
				key := f.Src
				if key == "" {
					key = "<config>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, f.ErrorCode, f.ErrorMsg)
			case domain.StatusProcessed:
				fmt.Fprintf(os.Stdout, "report: %s\n", f.Dst)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(os.Stderr, summaryLine(rr))
}

func reportForConfigError(err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		StartedAt:  now,
		FinishedAt: now,
		Files: []domain.FileResult{{
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeConfigInvalid,
			ErrorMsg:  err.Error(),
		}},
	}
	if cwd, e := os.Getwd(); e == nil {
		rr.Input, _ = filepath.Abs(cwd)
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	return nil, false
}
