package quill

import (
	"context"
	"errors"
	"testing"
)

func TestPipelineDeliversInOrder(t *testing.T) {
	var got []int
	p := startPipeline(context.Background(), 3, func(job frameJob) error {
		got = append(got, job.snap.Index)
		return nil
	})
	for i := range 10 {
		if err := p.submit(frameJob{snap: &Snapshot{Index: i}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.stop(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("delivered %d frames, want 10", len(got))
	}
	for i, idx := range got {
		if idx != i {
			t.Fatalf("delivery order = %v", got)
		}
	}
}

func TestPipelineCarriesScreenshots(t *testing.T) {
	var labels []string
	p := startPipeline(context.Background(), 1, func(job frameJob) error {
		labels = append(labels, job.screenshots...)
		return nil
	})
	p.submit(frameJob{snap: &Snapshot{}, screenshots: []string{"a", "b"}})
	if err := p.stop(); err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 || labels[0] != "a" {
		t.Errorf("labels = %v", labels)
	}
}

func TestPipelineWorkerError(t *testing.T) {
	boom := errors.New("boom")
	p := startPipeline(context.Background(), 1, func(job frameJob) error {
		if job.snap.Index == 2 {
			return boom
		}
		return nil
	})
	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = p.submit(frameJob{snap: &Snapshot{Index: i}})
	}
	if !errors.Is(err, boom) {
		t.Fatalf("submit err = %v, want boom", err)
	}
	// stop and further submits report the same error.
	if err := p.stop(); !errors.Is(err, boom) {
		t.Errorf("stop = %v", err)
	}
	if err := p.submit(frameJob{snap: &Snapshot{}}); !errors.Is(err, boom) {
		t.Errorf("submit after stop = %v", err)
	}
}

func TestPipelineRejectsAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	delivered := 0
	p := startPipeline(context.Background(), 4, func(frameJob) error {
		delivered++
		return boom
	})
	if err := p.submit(frameJob{snap: &Snapshot{Index: 0}}); err != nil {
		t.Fatal(err)
	}
	<-p.ctx.Done()

	// The buffer has room, but the failed pipeline must not take the job.
	if err := p.submit(frameJob{snap: &Snapshot{Index: 1}}); !errors.Is(err, boom) {
		t.Fatalf("submit after failure = %v, want boom", err)
	}
	if delivered != 1 {
		t.Errorf("delivered %d frames after failure, want 1", delivered)
	}
}

func TestPipelineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := startPipeline(ctx, 1, func(frameJob) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p.submit(frameJob{snap: &Snapshot{Index: 0}}) // held by the worker
	p.submit(frameJob{snap: &Snapshot{Index: 1}}) // fills the buffer
	cancel()
	if err := p.submit(frameJob{snap: &Snapshot{Index: 2}}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
