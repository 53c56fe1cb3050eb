package compressors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"mailbridge/internal/domain/repositories"
)

// DefaultWaitDelay время ожидания закрытия каналов ввода-вывода после остановки процесса
const DefaultWaitDelay = 5 * time.Second

// ExecExecutor запускает процессы через os/exec
type ExecExecutor struct {
	waitDelay time.Duration
}

var _ repositories.CommandExecutor = (*ExecExecutor)(nil)

// NewExecExecutor создает исполнитель команд
func NewExecExecutor(waitDelay time.Duration) *ExecExecutor {
	if waitDelay <= 0 {
		waitDelay = DefaultWaitDelay
	}
	return &ExecExecutor{waitDelay: waitDelay}
}

// Run запускает команду и ждет ее завершения.
// Ненулевой код выхода не является ошибкой и возвращается в CommandResult;
// ошибка означает, что процесс не удалось запустить или он был прерван контекстом.
func (e *ExecExecutor) Run(ctx context.Context, name string, args ...string) (repositories.CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = e.waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := repositories.CommandResult{ExitCode: -1, Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("процесс %s прерван: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return result, fmt.Errorf("ошибка запуска %s: %w", name, err)
	}

	return result, nil
}
