package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"tamaqBack/internal/delivery/repo"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type fakeTransitions struct {
	due      []repo.Transition
	finished []int64
}

func (f *fakeTransitions) ListDue(ctx context.Context, now time.Time, limit int) ([]repo.Transition, error) {
	return f.due, nil
}

func (f *fakeTransitions) Finish(ctx context.Context, id int64) error {
	f.finished = append(f.finished, id)
	return nil
}

type fakeApplier struct {
	applied []repo.Transition
	failOn  int64
}

func (f *fakeApplier) ApplyTransition(ctx context.Context, t repo.Transition) error {
	if t.OrderID == f.failOn {
		return errors.New("boom")
	}
	f.applied = append(f.applied, t)
	return nil
}

func TestTickAppliesAndFinishesDueTransitions(t *testing.T) {
	transitions := &fakeTransitions{due: []repo.Transition{
		{ID: 1, OrderID: 10, FromStatus: "accepted", ToStatus: "preparing"},
		{ID: 2, OrderID: 11, FromStatus: "out_for_delivery", ToStatus: "delivered"},
	}}
	applier := &fakeApplier{}

	s := New(transitions, applier, nopLogger{}, time.Second)
	s.Tick(context.Background())

	if len(applier.applied) != 2 {
		t.Fatalf("expected 2 applied transitions, got %d", len(applier.applied))
	}
	if len(transitions.finished) != 2 || transitions.finished[0] != 1 || transitions.finished[1] != 2 {
		t.Fatalf("expected rows 1 and 2 finished, got %v", transitions.finished)
	}
}

func TestTickLeavesFailedTransitionPending(t *testing.T) {
	transitions := &fakeTransitions{due: []repo.Transition{
		{ID: 1, OrderID: 10, FromStatus: "accepted", ToStatus: "preparing"},
		{ID: 2, OrderID: 11, FromStatus: "accepted", ToStatus: "preparing"},
	}}
	applier := &fakeApplier{failOn: 10}

	s := New(transitions, applier, nopLogger{}, time.Second)
	s.Tick(context.Background())

	if len(transitions.finished) != 1 || transitions.finished[0] != 2 {
		t.Fatalf("expected only row 2 finished, got %v", transitions.finished)
	}
}
