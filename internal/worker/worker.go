package worker

import (
	"context"
)

// Worker - долгоживущий процесс под управлением WorkerManager
// (доставка уведомлений, long polling бота).
type Worker interface {
	// Start блокируется до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует о завершении; повторный вызов безопасен
	Stop() error

	// Name используется в логах менеджера
	Name() string
}
