package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/bankocr/internal/domain"
	"github.com/John-Robertt/bankocr/internal/ocr"
	"github.com/John-Robertt/bankocr/internal/validate"
)

// ProcessLines 把一个输入文件的全部行转成账号结论：Segment -> Split -> Decode -> Validate。
//
// 账号之间互不依赖，按 workers 并发处理；结果按下标写回，输出顺序始终等于输入顺序。
// 唯一可能的错误来自 ctx 取消。
func ProcessLines(ctx context.Context, lines []string, workers int) ([]domain.AccountStatus, error) {
	blocks := ocr.Segment(lines)
	out := make([]domain.AccountStatus, len(blocks))

	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range blocks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ProcessBlock(blocks[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessBlock 处理单个账号分组。
func ProcessBlock(b domain.AccountBlock) domain.AccountStatus {
	return validate.Account(ocr.Decode(ocr.Split(b)))
}
