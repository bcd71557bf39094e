package orchestrator

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrosul/recon-cli/internal/model"
)

type stubRunner struct {
	calls   []string
	failing map[string]bool
}

func (s *stubRunner) Run(_ context.Context, name string) (*model.JobRun, error) {
	s.calls = append(s.calls, name)
	if s.failing[name] {
		return nil, eris.Errorf("%s blew up", name)
	}
	return &model.JobRun{Job: name, Status: model.JobStatusComplete}, nil
}

func TestCycle_RunsJobsInOrder(t *testing.T) {
	r := &stubRunner{}
	o := New(r, []string{"transito", "descarga", "divergencia"}, "@every 50m")

	require.NoError(t, o.Cycle(context.Background()))
	assert.Equal(t, []string{"transito", "descarga", "divergencia"}, r.calls)
}

func TestCycle_ContinuesPastFailure(t *testing.T) {
	r := &stubRunner{failing: map[string]bool{"transito": true}}
	o := New(r, []string{"transito", "descarga"}, "@every 50m")

	err := o.Cycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transito")
	assert.Equal(t, []string{"transito", "descarga"}, r.calls, "later jobs still run")
}

func TestCycle_CancelledContext(t *testing.T) {
	r := &stubRunner{}
	o := New(r, []string{"transito"}, "@every 50m")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := o.Cycle(ctx)
	require.Error(t, err)
	assert.Empty(t, r.calls)
}

func TestStart_BadSchedule(t *testing.T) {
	o := New(&stubRunner{}, []string{"transito"}, "not a schedule")

	err := o.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad schedule")
}
