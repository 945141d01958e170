package logging

import (
	"runtime"
	"strings"
)

const (
	logrusPackage      = "github.com/sirupsen/logrus"
	loggingPackage     = ModuleName + "/pkg/logging"
	maximumCallerDepth = 25
	minimumCallerDepth = 4
)

// getCaller returns the first frame outside of logrus and this package
func getCaller() *runtime.Frame {
	pcs := make([]uintptr, maximumCallerDepth)
	depth := runtime.Callers(minimumCallerDepth, pcs)
	frames := runtime.CallersFrames(pcs[:depth])
	for {
		f, more := frames.Next()
		pkg := getPackageName(f.Function)
		if pkg != logrusPackage && pkg != loggingPackage && f.Function != "" {
			return &f
		}
		if !more {
			return nil
		}
	}
}

// getPackageName reduces a fully qualified function name to the package name
func getPackageName(f string) string {
	for {
		lastPeriod := strings.LastIndex(f, ".")
		lastSlash := strings.LastIndex(f, "/")
		if lastPeriod > lastSlash {
			f = f[:lastPeriod]
		} else {
			break
		}
	}
	return f
}
