// internal/pipeline/ci.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/tokenlists/internal/report"
	"github.com/rovshanmuradov/tokenlists/internal/tokenlist"
)

const ciWorkers = 4

// ErrCheckFailed хотя бы один список разошелся с исходным снимком или не читается
var ErrCheckFailed = errors.New("ci check failed")

// CICheck сверяет каждый список реестра с его снимком в src/tokens.
// Проверяются все списки; результат в порядке имен списков.
func (r *Runner) CICheck(ctx context.Context) ([]report.DriftRow, error) {
	names := r.registry.ListNames()
	rows := make([]report.DriftRow, len(names))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(ciWorkers)
	for i, name := range names {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rows[i] = report.DriftRow{List: name, Err: r.checkList(name)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error
	for _, row := range rows {
		if row.Err != nil {
			r.logger.Error("List check failed", zap.String("list", row.List), zap.Error(row.Err))
			errs = append(errs, row.Err)
		}
	}
	if len(errs) > 0 {
		return rows, fmt.Errorf("%w: %w", ErrCheckFailed, errors.Join(errs...))
	}
	r.logger.Info("All lists match their sources", zap.Int("lists", len(rows)))
	return rows, nil
}

func (r *Runner) checkList(name string) error {
	source, err := r.store.ReadSource(name)
	if err != nil {
		return err
	}
	list, err := r.store.ReadList(name)
	if err != nil {
		return err
	}
	return tokenlist.CheckDrift(name, source, list)
}
