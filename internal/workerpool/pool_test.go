package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunAllExecutesEveryTask(t *testing.T) {
	p := New(4, 64, 2*time.Second)
	var count int32
	tasks := make([]Task, 16)
	for i := range tasks {
		tasks[i] = func() error {
			atomic.AddInt32(&count, 1)
			return nil
		}
	}
	err := p.RunAll(context.Background(), tasks)
	assert.NoError(t, err)
	assert.EqualValues(t, 16, count)
}

func TestRunAllPropagatesFirstError(t *testing.T) {
	p := New(2, 16, 2*time.Second)
	boom := errors.New("boom")
	tasks := []Task{
		func() error { return nil },
		func() error { return boom },
	}
	err := p.RunAll(context.Background(), tasks)
	assert.Error(t, err)
}

func TestRunAllEmptyIsNoop(t *testing.T) {
	p := New(2, 16, time.Second)
	assert.NoError(t, p.RunAll(context.Background(), nil))
}
