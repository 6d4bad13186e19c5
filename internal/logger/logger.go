package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// Discard отключает вывод логов (используется в тестах и CLI).
func Discard() {
	if Log == nil {
		Log = logrus.New()
	}
	Log.SetOutput(io.Discard)
}

// L возвращает инициализированный логгер или стандартный logrus, если Init не вызывался.
func L() *logrus.Logger {
	if Log != nil {
		return Log
	}
	return logrus.StandardLogger()
}

// With возвращает запись с полями для сервисного кода.
func With(fields logrus.Fields) *logrus.Entry {
	return L().WithFields(fields)
}
