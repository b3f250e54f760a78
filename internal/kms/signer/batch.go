package signer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit caps concurrent custody requests issued by SignAll.
const DefaultBatchLimit = 8

// SignAll 并发签名多条互相独立的消息，结果顺序与输入一致
// 任一签名失败即取消剩余请求并返回该错误；limit <= 0 时使用 DefaultBatchLimit
func (s *RemoteSigner) SignAll(ctx context.Context, messages [][]byte, limit int) ([][]byte, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([][]byte, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, message := range messages {
		g.Go(func() error {
			sig, err := s.Sign(gctx, message)
			if err != nil {
				return err
			}
			results[i] = sig
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
