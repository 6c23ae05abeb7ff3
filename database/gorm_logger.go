package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// NewGormLogger sends gorm warnings, errors and slow queries to log.
// Lookups that find nothing are expected and stay silent.
func NewGormLogger(log *zap.Logger) logger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	return logger.New(zapWriter{log: log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
