// Package history 把运行结果持久化到本地 SQLite，供 `bankocr history` 查询。
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/infra/fsx"
)

// tsLayout 是定宽 UTC 时间格式：按字符串排序即按时间排序。
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Store 封装 SQLite 连接。
type Store struct {
	conn *sql.DB
}

// RunSummary 是 history 列表中的一行。
type RunSummary struct {
	RunID      string
	Input      string
	Format     string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    domain.ReportSummary
}

// Open 打开（或创建）dbPath 处的数据库并执行迁移。
func Open(dbPath string) (*Store, error) {
	if err := fsx.EnsureDir(filepath.Dir(filepath.Clean(dbPath))); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败：%w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败：%w", err)
	}
	// SQLite 只有一个写者：限制为单连接，避免 SQLITE_BUSY。
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("迁移失败：%w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			format TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			processed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			accounts INTEGER NOT NULL DEFAULT 0,
			ok INTEGER NOT NULL DEFAULT 0,
			illegible INTEGER NOT NULL DEFAULT 0,
			invalid INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id TEXT NOT NULL REFERENCES runs(id),
			src TEXT NOT NULL,
			dst TEXT NOT NULL,
			status TEXT NOT NULL,
			error_code TEXT NOT NULL DEFAULT '',
			error_msg TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			src TEXT NOT NULL,
			position INTEGER NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_number ON accounts(number)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun 在一个事务里写入 run、文件结果与账号结论。
func (s *Store) SaveRun(ctx context.Context, rr domain.RunReport) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sum := rr.Summary
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, input, output, format, started_at, finished_at,
			processed, skipped, failed, accounts, ok, illegible, invalid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rr.RunID, rr.Input, rr.Output, rr.Format,
		rr.StartedAt.UTC().Format(tsLayout), rr.FinishedAt.UTC().Format(tsLayout),
		sum.Processed, sum.Skipped, sum.Failed, sum.Accounts, sum.OK, sum.Illegible, sum.Invalid,
	)
	if err != nil {
		return fmt.Errorf("写入 run 失败：%w", err)
	}

	for _, f := range rr.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (run_id, src, dst, status, error_code, error_msg) VALUES (?, ?, ?, ?, ?, ?)`,
			rr.RunID, f.Src, f.Dst, f.Status, f.ErrorCode, f.ErrorMsg,
		); err != nil {
			return fmt.Errorf("写入文件结果失败：%w", err)
		}
		for i, a := range f.Accounts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO accounts (run_id, src, position, number, status) VALUES (?, ?, ?, ?, ?)`,
				rr.RunID, f.Src, i, a.Number, a.Kind(),
			); err != nil {
				return fmt.Errorf("写入账号失败：%w", err)
			}
		}
	}
	return tx.Commit()
}

// RecentRuns 按开始时间倒序返回最近 limit 次运行。
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, input, format, started_at, finished_at,
			processed, skipped, failed, accounts, ok, illegible, invalid
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r                 RunSummary
			started, finished string
		)
		if err := rows.Scan(&r.RunID, &r.Input, &r.Format, &started, &finished,
			&r.Summary.Processed, &r.Summary.Skipped, &r.Summary.Failed,
			&r.Summary.Accounts, &r.Summary.OK, &r.Summary.Illegible, &r.Summary.Invalid,
		); err != nil {
			return nil, err
		}
		var err error
		if r.StartedAt, err = time.Parse(tsLayout, started); err != nil {
			return nil, fmt.Errorf("run %s 的 started_at 无效：%w", r.RunID, err)
		}
		if r.FinishedAt, err = time.Parse(tsLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s 的 finished_at 无效：%w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AccountHistory 返回某个账号在历史运行中的分类（按运行开始时间倒序）。
func (s *Store) AccountHistory(ctx context.Context, number string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT a.status FROM accounts a JOIN runs r ON r.id = a.run_id
		WHERE a.number = ? ORDER BY r.started_at DESC, a.position`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
