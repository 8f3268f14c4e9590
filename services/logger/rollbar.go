package logsvc

import (
	"fmt"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
)

type RollbarLogger struct {
	std     *zap.Logger
	enabled bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

// NewZapLogger builds the local log sink: human readable in debug mode, JSON otherwise.
func NewZapLogger(name string, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named(name), nil
}

// NewNopLogger returns a logger writing nowhere; used in tests.
func NewNopLogger() *RollbarLogger {
	return &RollbarLogger{std: zap.NewNop()}
}

// Enable turns reporting to Rollbar on or off; local logs are always written.
func (l *RollbarLogger) Enable(enabled bool) {
	l.enabled = enabled
	rollbar.SetEnabled(enabled)
}

func (l *RollbarLogger) Sync() error {
	return l.std.Sync()
}

// expected fmt: msg | error, map[string]interface{}, school.User
func (l *RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []zap.Field) {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	fields := make([]zap.Field, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case school.User:
			// set acting User; only set one
			if !usrSet {
				if l.enabled {
					rollbar.SetPerson(strconv.FormatInt(a.ID, 10), a.Login, "")
				}
				fields = append(fields, zap.Int64("user_id", a.ID), zap.String("user", a.Login))
				usrSet = true
			}
			continue
		case error:
			fields = append(fields, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				fields = append(fields, zap.Any(k, v))
			}
		default:
			fields = append(fields, zap.Any("extra", a))
		}
		newArgs = append(newArgs, arg)
	}
	if !usrSet && l.enabled {
		rollbar.ClearPerson()
	}
	return newArgs, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Debug(rArgs...)
	}
	l.std.Debug(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Info(rArgs...)
	}
	l.std.Info(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Warning(rArgs...)
	}
	l.std.Warn(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Error(rArgs...)
	}
	l.std.Error(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Critical(rArgs...)
		rollbar.Wait()
	}
	l.std.Fatal(msg, fields...)
}
