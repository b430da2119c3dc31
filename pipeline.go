package quill

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// frameJob is one snapshot on its way to the renderer, with the screenshot
// labels queued when it was produced.
type frameJob struct {
	snap        *Snapshot
	screenshots []string
}

// pipeline renders and delivers frames on a single worker goroutine fed
// through a bounded channel, so tick N+1 can be computed while frame N is
// rendered. One worker keeps delivery in index order.
type pipeline struct {
	jobs    chan frameJob
	g       *errgroup.Group
	ctx     context.Context
	stopped bool
	err     error
}

func startPipeline(ctx context.Context, depth int, deliver func(frameJob) error) *pipeline {
	g, gctx := errgroup.WithContext(ctx)
	p := &pipeline{jobs: make(chan frameJob, depth), g: g, ctx: gctx}
	g.Go(func() error {
		for job := range p.jobs {
			if err := deliver(job); err != nil {
				return err
			}
		}
		return nil
	})
	return p
}

// submit queues job, blocking while the channel is full. If the worker has
// failed or ctx is done the pipeline is stopped and its error returned; no
// job is accepted after that.
func (p *pipeline) submit(job frameJob) error {
	if p.stopped {
		return p.err
	}
	if p.ctx.Err() != nil {
		return p.halt()
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return p.halt()
	}
}

func (p *pipeline) halt() error {
	if err := p.stop(); err != nil {
		return err
	}
	return p.ctx.Err()
}

// stop closes the queue, waits for queued frames to be delivered and
// returns the first delivery error. Safe to call more than once.
func (p *pipeline) stop() error {
	if p.stopped {
		return p.err
	}
	p.stopped = true
	close(p.jobs)
	p.err = p.g.Wait()
	return p.err
}
