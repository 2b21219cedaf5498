package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

func TestNewMachineEntryState(t *testing.T) {
	assert.Equal(t, StateTitle, NewMachine(models.DisplayOneByOne, 3).State())
	assert.Equal(t, StateFeed, NewMachine(models.DisplayAllAtOnce, 3).State())
}

func TestSequentialFlow(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 2)

	assert.NoError(t, m.Start())
	assert.Equal(t, StateQuestion, m.State())
	assert.Equal(t, 0, m.Current())

	assert.NoError(t, m.Submit(false))
	assert.Equal(t, StateResult, m.State())

	assert.NoError(t, m.Advance())
	assert.Equal(t, StateQuestion, m.State())
	assert.Equal(t, 1, m.Current())
	assert.Equal(t, 1, m.Furthest())

	assert.NoError(t, m.Submit(false))
	assert.NoError(t, m.Advance())
	assert.Equal(t, StateCompleted, m.State())
}

func TestLongTextSkipsResultScreen(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 2)
	assert.NoError(t, m.Start())

	assert.NoError(t, m.Submit(true))
	assert.Equal(t, StateQuestion, m.State())
	assert.Equal(t, 1, m.Current())

	// long_text on the last question completes directly
	assert.NoError(t, m.Submit(true))
	assert.Equal(t, StateCompleted, m.State())
}

func TestBatchFlow(t *testing.T) {
	m := NewMachine(models.DisplayAllAtOnce, 3)

	assert.NoError(t, m.Start())
	assert.Equal(t, StateFeed, m.State())
	assert.False(t, m.StartedAt().IsZero())

	assert.NoError(t, m.Review())
	assert.Equal(t, StateFeed, m.State())
	assert.True(t, m.FeedChecked())

	assert.NoError(t, m.Finish())
	assert.Equal(t, StateCompleted, m.State())
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *Machine
		event func(*Machine) error
	}{
		{
			name:  "submit from title",
			setup: func() *Machine { return NewMachine(models.DisplayOneByOne, 2) },
			event: func(m *Machine) error { return m.Submit(false) },
		},
		{
			name:  "advance from question",
			setup: startedSequential,
			event: func(m *Machine) error { return m.Advance() },
		},
		{
			name:  "start from question",
			setup: startedSequential,
			event: func(m *Machine) error { return m.Start() },
		},
		{
			name:  "review in sequential mode",
			setup: startedSequential,
			event: func(m *Machine) error { return m.Review() },
		},
		{
			name:  "finish in sequential mode",
			setup: startedSequential,
			event: func(m *Machine) error { return m.Finish() },
		},
		{
			name:  "reset before completion",
			setup: startedSequential,
			event: func(m *Machine) error { return m.Reset() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.setup()

			err := tt.event(m)

			var transitionErr *TransitionError
			assert.ErrorAs(t, err, &transitionErr)
		})
	}
}

func TestSeekToStaysWithinFurthest(t *testing.T) {
	m := startedSequential()
	assert.NoError(t, m.Submit(false))
	assert.NoError(t, m.Advance())
	assert.NoError(t, m.Submit(false))
	assert.NoError(t, m.Advance())
	assert.Equal(t, 2, m.Furthest())

	assert.NoError(t, m.SeekTo(0))
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, StateQuestion, m.State())
	// backward navigation never loses the forward progress marker
	assert.Equal(t, 2, m.Furthest())

	assert.NoError(t, m.SeekTo(2))
	assert.Error(t, m.SeekTo(3))
	assert.Error(t, m.SeekTo(-1))
}

func TestResetKeepsFurthest(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 2)
	assert.NoError(t, m.Start())
	assert.NoError(t, m.Submit(true))
	assert.NoError(t, m.Submit(true))
	assert.Equal(t, StateCompleted, m.State())

	assert.NoError(t, m.Reset())
	assert.Equal(t, StateTitle, m.State())
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, 1, m.Furthest())
}

func TestRestoreDraft(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 5)
	startedAt := time.Now().Add(-90 * time.Second)

	m.RestoreDraft(2, startedAt)

	assert.Equal(t, StateQuestion, m.State())
	assert.Equal(t, 2, m.Current())
	assert.Equal(t, 2, m.Furthest())
	assert.GreaterOrEqual(t, m.Elapsed(), 90*time.Second)
}

func TestRestoreDraftClampsIndex(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 3)
	m.RestoreDraft(10, time.Now())
	assert.Equal(t, 2, m.Current())

	m = NewMachine(models.DisplayOneByOne, 3)
	m.RestoreDraft(-1, time.Now())
	assert.Equal(t, 0, m.Current())
}

func TestRestoreDraftBatchModeResumesFeed(t *testing.T) {
	m := NewMachine(models.DisplayAllAtOnce, 3)
	m.RestoreDraft(1, time.Now())
	assert.Equal(t, StateFeed, m.State())
}

func TestRestoreCompleted(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 3)
	m.RestoreCompleted()

	assert.Equal(t, StateCompleted, m.State())
	assert.Equal(t, 2, m.Current())
}

func TestElapsedBeforeStartIsZero(t *testing.T) {
	m := NewMachine(models.DisplayOneByOne, 1)
	assert.Equal(t, time.Duration(0), m.Elapsed())
}

func startedSequential() *Machine {
	m := NewMachine(models.DisplayOneByOne, 3)
	_ = m.Start()
	return m
}
