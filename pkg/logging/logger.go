package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const (
	LogFieldsContextKey = contextKey("log_fields")

	ProjectDirectoryName = "metastore"
	ModuleName           = "github.com/treeverse/metastore"
	moduleOwnerPrefix    = "github.com/treeverse/"
)

// log_fields keys
const (
	// PackageIDFieldKey package identifier (string)
	PackageIDFieldKey = "package_id"
	// RevisionFieldKey revision reference or id (string)
	RevisionFieldKey = "revision"
	// TagFieldKey tag name (string)
	TagFieldKey = "tag"
	// DriverFieldKey metadata store driver name (string, ex: github)
	DriverFieldKey = "driver"
	// OwnerFieldKey GitHub account owning the package repository (string)
	OwnerFieldKey = "owner"
	// RepositoryFieldKey repository name (string)
	RepositoryFieldKey = "repository"
	// OperationFieldKey store operation (string, ex: tag_create)
	OperationFieldKey = "operation"
	// ServiceNameFieldKey service name (string, ex: cli)
	ServiceNameFieldKey = "service_name"
)

// durationStrSuffix is appended to a duration field name to hold its human readable form
const durationStrSuffix = "_str"

var (
	formatterInitOnce sync.Once
	defaultLogger     = logrus.New()

	writersMu sync.Mutex
	closers   []io.Closer
)

func Level() string {
	return defaultLogger.GetLevel().String()
}

type Fields map[string]interface{}

// logCallerTrimmer is used to trim the caller paths to be relative to the project root
func logCallerTrimmer(frame *runtime.Frame) (function string, file string) {
	file = frame.File
	if idx := strings.Index(strings.ToLower(file), ProjectDirectoryName); idx != -1 {
		rest := file[idx+len(ProjectDirectoryName):]
		if sep := strings.IndexRune(rest, os.PathSeparator); sep != -1 {
			rest = rest[sep:]
		}
		file = rest
	}
	file = fmt.Sprintf("%s:%d", strings.TrimPrefix(file, string(os.PathSeparator)), frame.Line)

	function = frame.Function
	if rest, ok := strings.CutPrefix(function, moduleOwnerPrefix); ok {
		repo, path, found := strings.Cut(rest, "/")
		if found && strings.HasPrefix(strings.ToLower(repo), ProjectDirectoryName) {
			function = path
		}
	}
	return
}

func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		defaultLogger.SetLevel(logrus.TraceLevel)
	case "debug":
		defaultLogger.SetLevel(logrus.DebugLevel)
	case "info":
		defaultLogger.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		defaultLogger.SetLevel(logrus.WarnLevel)
	case "error":
		defaultLogger.SetLevel(logrus.ErrorLevel)
	case "panic":
		defaultLogger.SetLevel(logrus.PanicLevel)
	case "null", "none":
		defaultLogger.SetLevel(logrus.PanicLevel)
		defaultLogger.SetOutput(io.Discard)
	}
}

// SetOutputs routes log output to outputs: "-" is stdout, "=" is stderr and any other value
// is a file rotated by size. Previously opened files are closed.
func SetOutputs(outputs []string, fileMaxSizeMB, filesKeep int) error {
	var (
		writers     []io.Writer
		fileClosers []io.Closer
	)
	for _, output := range outputs {
		var w io.Writer
		switch output {
		case "":
			continue
		case "-":
			w = os.Stdout
		case "=":
			w = os.Stderr
		default:
			f := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    fileMaxSizeMB,
				MaxBackups: filesKeep,
			}
			fileClosers = append(fileClosers, f)
			w = f
		}
		writers = append(writers, w)
	}
	if len(writers) == 0 {
		return nil
	}
	if err := CloseWriters(); err != nil {
		return err
	}
	writersMu.Lock()
	closers = fileClosers
	writersMu.Unlock()
	if len(writers) == 1 {
		defaultLogger.SetOutput(writers[0])
	} else {
		defaultLogger.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// CloseWriters flushes and closes the log files opened by SetOutputs
func CloseWriters() error {
	writersMu.Lock()
	defer writersMu.Unlock()
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	closers = nil
	return errors.Join(errs...)
}

func SetOutputFormat(format string) {
	var formatter logrus.Formatter
	switch strings.ToLower(format) {
	case "text":
		formatter = &logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			QuoteEmptyFields:       true,
			CallerPrettyfier:       logCallerTrimmer,
		}
	case "json":
		formatter = &logrus.JSONFormatter{
			CallerPrettyfier: logCallerTrimmer,
			PrettyPrint:      false,
		}
	default:
		return // no known formatter found
	}

	// wrap it with our caller formatter
	defaultLogger.SetFormatter(logrusCallerFormatter{formatter})
}

type Logger interface {
	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Warning(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Panic(args ...interface{})
	Log(level logrus.Level, args ...interface{})
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
	Logf(level logrus.Level, format string, args ...interface{})
	IsTracing() bool
	IsDebugging() bool
	IsInfo() bool
	IsError() bool
	IsWarn() bool
}

// expandDurations logs every time.Duration as nanoseconds next to a readable "_str" field
func expandDurations(fields Fields) logrus.Fields {
	res := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if d, ok := v.(time.Duration); ok {
			res[k] = int64(d)
			res[k+durationStrSuffix] = d.String()
			continue
		}
		res[k] = v
	}
	return res
}

type logrusEntryWrapper struct {
	e *logrus.Entry
}

func (l *logrusEntryWrapper) WithContext(ctx context.Context) Logger {
	return addFromContext(
		&logrusEntryWrapper{l.e.WithContext(ctx)},
		ctx,
	)
}

func (l *logrusEntryWrapper) WithField(key string, value interface{}) Logger {
	return l.WithFields(Fields{key: value})
}

func (l *logrusEntryWrapper) WithFields(fields Fields) Logger {
	return &logrusEntryWrapper{l.e.WithFields(expandDurations(fields))}
}

func (l *logrusEntryWrapper) WithError(err error) Logger {
	return &logrusEntryWrapper{l.e.WithError(err)}
}

func (l logrusEntryWrapper) Trace(args ...interface{}) {
	l.e.Trace(args...)
}

func (l logrusEntryWrapper) Debug(args ...interface{}) {
	l.e.Debug(args...)
}

func (l logrusEntryWrapper) Info(args ...interface{}) {
	l.e.Info(args...)
}

func (l logrusEntryWrapper) Warn(args ...interface{}) {
	l.e.Warn(args...)
}

func (l logrusEntryWrapper) Warning(args ...interface{}) {
	l.e.Warning(args...)
}

func (l logrusEntryWrapper) Error(args ...interface{}) {
	l.e.Error(args...)
}

func (l logrusEntryWrapper) Fatal(args ...interface{}) {
	l.e.Fatal(args...)
}

func (l logrusEntryWrapper) Panic(args ...interface{}) {
	l.e.Panic(args...)
}

func (l logrusEntryWrapper) Log(level logrus.Level, args ...interface{}) {
	l.e.Log(level, args...)
}

func (l *logrusEntryWrapper) Tracef(format string, args ...interface{}) {
	l.e.Tracef(format, args...)
}

func (l *logrusEntryWrapper) Debugf(format string, args ...interface{}) {
	l.e.Debugf(format, args...)
}

func (l *logrusEntryWrapper) Infof(format string, args ...interface{}) {
	l.e.Infof(format, args...)
}

func (l *logrusEntryWrapper) Warnf(format string, args ...interface{}) {
	l.e.Warnf(format, args...)
}

func (l *logrusEntryWrapper) Warningf(format string, args ...interface{}) {
	l.e.Warningf(format, args...)
}

func (l *logrusEntryWrapper) Errorf(format string, args ...interface{}) {
	l.e.Errorf(format, args...)
}

func (l *logrusEntryWrapper) Fatalf(format string, args ...interface{}) {
	l.e.Fatalf(format, args...)
}

func (l *logrusEntryWrapper) Panicf(format string, args ...interface{}) {
	l.e.Panicf(format, args...)
}

func (l logrusEntryWrapper) Logf(level logrus.Level, format string, args ...interface{}) {
	l.e.Logf(level, format, args...)
}

func (*logrusEntryWrapper) IsTracing() bool {
	return defaultLogger.IsLevelEnabled(logrus.TraceLevel)
}

func (*logrusEntryWrapper) IsDebugging() bool {
	return defaultLogger.IsLevelEnabled(logrus.DebugLevel)
}

func (*logrusEntryWrapper) IsInfo() bool {
	return defaultLogger.IsLevelEnabled(logrus.InfoLevel)
}

func (*logrusEntryWrapper) IsError() bool {
	return defaultLogger.IsLevelEnabled(logrus.ErrorLevel)
}

func (*logrusEntryWrapper) IsWarn() bool {
	return defaultLogger.IsLevelEnabled(logrus.WarnLevel)
}

type logrusCallerFormatter struct {
	f logrus.Formatter
}

func (lf logrusCallerFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Caller = getCaller()
	return lf.f.Format(e)
}

// ContextUnavailable returns the default logger. Use it only where no context is around,
// otherwise use FromContext.
func ContextUnavailable() Logger {
	// wrap formatter with our own formatter that overrides caller
	formatterInitOnce.Do(func() {
		defaultLogger.SetReportCaller(true)
		defaultLogger.Formatter = logrusCallerFormatter{defaultLogger.Formatter}
	})
	return &logrusEntryWrapper{
		e: logrus.NewEntry(defaultLogger),
	}
}

func addFromContext(log Logger, ctx context.Context) Logger {
	fields := GetFieldsFromContext(ctx)
	if fields == nil {
		return log
	}
	return log.WithFields(fields)
}

func FromContext(ctx context.Context) Logger {
	return addFromContext(ContextUnavailable(), ctx)
}

// GetFieldsFromContext returns the log fields set on ctx by AddFields, nil if none
func GetFieldsFromContext(ctx context.Context) Fields {
	fields, _ := ctx.Value(LogFieldsContextKey).(Fields)
	return fields
}

// AddFields returns a context carrying fields on top of those already set on ctx
func AddFields(ctx context.Context, fields Fields) context.Context {
	loggerFields := Fields{}
	maps.Copy(loggerFields, GetFieldsFromContext(ctx))
	maps.Copy(loggerFields, fields)
	return context.WithValue(ctx, LogFieldsContextKey, loggerFields)
}
