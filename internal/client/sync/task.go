package sync

import "context"

// PushResult итог одной попытки отправки записи
type PushResult int

const (
	// PushOK запись принята сервером (или сервер уже хранит не менее новую версию)
	PushOK PushResult = iota
	// PushQueued клиент офлайн, ключ сохранен в pending
	PushQueued
	// PushFailed сервер вернул ошибку, ключ сохранен в pending
	PushFailed
	// PushSkipped identity не синхронизируется (гость) или движок закрыт
	PushSkipped
)

func (r PushResult) String() string {
	switch r {
	case PushOK:
		return "ok"
	case PushQueued:
		return "queued"
	case PushFailed:
		return "failed"
	case PushSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Task is the handle of one debounced push. Every write of a burst for the
// same key shares the Task, which resolves once with the single push's result.
type Task struct {
	done   chan struct{}
	result PushResult
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) resolve(result PushResult) {
	t.result = result
	close(t.done)
}

// Done is closed when the push has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the push finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (PushResult, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
