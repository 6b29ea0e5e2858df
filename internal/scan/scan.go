package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/bankocr/internal/domain"
)

// InputExt 是目录模式下被视为账号输入的扩展名。
const InputExt = ".txt"

// OutDirName 是目录模式下的报告目录（永久排除，不参与扫描）。
const OutDirName = "out"

// ScanInputs 扫描 root 下的账号输入文件。
//
// - root 是文件：直接作为唯一输入（不检查扩展名）
// - root 是目录：递归收集 *.txt，永久排除 <root>/out/，并应用 excludeDirs
//
// excludeDirs 视为相对 root 的路径（绝对路径按原样处理）。扫描阶段只做 stat。
func ScanInputs(root string, excludeDirs []string) ([]domain.InputFile, error) {
	root = filepath.Clean(root)

	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("输入不是普通文件：%q", root)
		}
		name := filepath.Base(root)
		return []domain.InputFile{{
			AbsPath: root,
			RelPath: name,
			Base:    strings.TrimSuffix(name, filepath.Ext(name)),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}}, nil
	}

	excluded := buildExcluded(root, excludeDirs)

	files := make([]domain.InputFile, 0, 16)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), InputExt) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.InputFile{
			AbsPath: path,
			RelPath: rel,
			Base:    strings.TrimSuffix(name, filepath.Ext(name)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// IsInput 判断 path 在目录模式下是否会被 ScanInputs 收集（watch 用它过滤事件）。
func IsInput(root, path string, excludeDirs []string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if !isUnder(path, root) || path == root {
		return false
	}
	if isExcluded(path, buildExcluded(root, excludeDirs)) {
		return false
	}
	name := filepath.Base(path)
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), InputExt)
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, 1+len(excludeDirs))
	excluded = append(excluded, filepath.Join(root, OutDirName))

	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
