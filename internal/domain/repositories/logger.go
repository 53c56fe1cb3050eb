package repositories

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Success(format string, args ...any)
	// With возвращает логгер с дополнительными атрибутами (пары ключ-значение)
	With(attrs ...any) Logger
	Close() error
}

// NopLogger логгер, отбрасывающий все сообщения
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)   {}
func (NopLogger) Info(string, ...any)    {}
func (NopLogger) Warning(string, ...any) {}
func (NopLogger) Error(string, ...any)   {}
func (NopLogger) Success(string, ...any) {}
func (n NopLogger) With(...any) Logger   { return n }
func (NopLogger) Close() error           { return nil }
