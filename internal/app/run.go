package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/task"
	"golang.org/x/sync/errgroup"
)

// Run reads every loaded task. At most WorkerCount sessions are open at a
// time. The first failing task cancels the others; its error is returned
// once every started session has been released.
func (a *App) Run(ctx context.Context) (retErr error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer func() {
			retErr = errors.CombineErrors(retErr, a.closeHealthcheckServer())
		}()
	}

	tasks := a.model.Tasks
	if len(tasks) == 0 {
		a.logger.Warn("No tasks found in configuration, nothing to read.")
		return nil
	}

	a.logger.Info("🚀 Reading tasks...", "tasks", len(tasks), "workers", a.config.WorkerCount)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	var total int64
	counts := make([]int64, len(tasks))
	for i, t := range tasks {
		g.Go(func() error {
			n, err := a.readTask(gctx, t)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "reading tasks")
	}
	for _, n := range counts {
		total += n
	}

	a.logger.Info("🏁 All tasks read.", "tasks", len(tasks), "records", total, "elapsed", time.Since(start))
	return nil
}

// readTask opens a session for t, drains its cursor and closes the session.
// It returns the number of records read.
func (a *App) readTask(ctx context.Context, t *task.Descriptor) (n int64, retErr error) {
	ctx = ctxlog.With(ctx, "task_id", t.ID())
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	s, err := a.factory.NewSession(ctx, a.model.Settings, a.model.Credentials, t)
	if err != nil {
		return 0, err
	}
	defer func() {
		retErr = errors.CombineErrors(retErr, s.Close(ctx))
	}()

	recs := s.Records()
	for recs.Next(ctx) {
		n++
		if a.config.CountOnly {
			continue
		}
		if err := a.writeRecord(t.ID(), recs.Record()); err != nil {
			return n, err
		}
	}
	if err := recs.Err(); err != nil {
		return n, errors.Wrapf(err, "reading records of task %s", t.ID())
	}

	if a.config.CountOnly {
		if err := a.writeCount(t.ID(), n); err != nil {
			return n, err
		}
	}

	logger.Info("Task read.",
		"worker", s.Address().String(),
		"tier", s.Tier().String(),
		"columns", s.Schema().NumColumns(),
		"records", n,
		"elapsed", time.Since(start),
	)
	return n, nil
}
