package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"madrasa-backend/internal/logger"
)

type queuedTask struct {
	id   string
	name string
	run  func(ctx context.Context)
}

// Dispatcher runs background tasks handed off by services after their
// transaction has committed. Implements service.TaskDispatcher.
type Dispatcher struct {
	queue  chan queuedTask
	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// NewDispatcher creates a dispatcher with the given queue capacity
func NewDispatcher(queueSize int) *Dispatcher {
	return &Dispatcher{
		queue: make(chan queuedTask, queueSize),
	}
}

// Start launches the worker goroutine
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-d.queue:
				d.runTask(ctx, task)
			}
		}
	}()

	logger.Info("Task dispatcher started", "queue_size", cap(d.queue))
}

// Stop halts the worker and runs whatever is still queued
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.wg.Wait()

		ctx := context.Background()
		for {
			select {
			case task := <-d.queue:
				d.runTask(ctx, task)
			default:
				logger.Info("Task dispatcher stopped")
				return
			}
		}
	})
}

// Enqueue schedules a task for background execution. Tasks are dropped
// with a log entry when the queue is full rather than blocking the caller.
func (d *Dispatcher) Enqueue(name string, task func(ctx context.Context)) {
	qt := queuedTask{
		id:   uuid.NewString(),
		name: name,
		run:  task,
	}
	select {
	case d.queue <- qt:
		logger.Debug("Task enqueued", "task", name, "task_id", qt.id)
	default:
		logger.Error("Task queue full, dropping task", "task", name, "task_id", qt.id)
	}
}

func (d *Dispatcher) runTask(ctx context.Context, task queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked", "task", task.name, "task_id", task.id, "panic", r)
		}
	}()
	task.run(ctx)
}
