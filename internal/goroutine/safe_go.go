package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/freelance-arbitration/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recover("")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover(" (with context)")
		fn(ctx)
	}()
}

// Run выполняет fn синхронно, перехватывая panic. Используется таймерами, которые
// уже работают в собственной горутине.
func (rh *RecoveryHandler) Run(fn func()) {
	defer rh.recover(" (timer)")
	fn()
}

func (rh *RecoveryHandler) recover(suffix string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("Panic in goroutine%s: %v\nStack trace:\n%s", suffix, r, debug.Stack())
	}
}

// logrusLogger пробрасывает ошибки в общий logrus логгер.
type logrusLogger struct{}

func (logrusLogger) Errorf(format string, args ...interface{}) {
	logger.L().Errorf(format, args...)
}

// DefaultRecoveryHandler - глобальный обработчик, пишущий в logrus
var DefaultRecoveryHandler = NewRecoveryHandler(logrusLogger{})

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}

// Run - синхронный запуск с перехватом panic
func Run(fn func()) {
	DefaultRecoveryHandler.Run(fn)
}
