package utilities

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	logMutex sync.Mutex
)

// SetupLogging wires the leveled loggers to stdout/stderr plus rotated
// files under logDir. Safe to call once at startup before any Log call.
func SetupLogging(logDir string) {
	infoWriter := io.MultiWriter(os.Stdout, rotatingFile(filepath.Join(logDir, "info.log")))
	warnWriter := io.MultiWriter(os.Stdout, rotatingFile(filepath.Join(logDir, "warn.log")))
	errorWriter := io.MultiWriter(os.Stderr, rotatingFile(filepath.Join(logDir, "error.log")))

	infoLog = log.New(infoWriter, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(warnWriter, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(errorWriter, "ERROR: ", log.Ldate|log.Ltime)

	// Override Go's default log as well.
	log.SetOutput(infoWriter)
}

func rotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
}

func getCallerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return runtime.FuncForPC(pc).Name()
}

func logf(level, format string, v ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()

	message := fmt.Sprintf(format, v...)
	logEntry := fmt.Sprintf("[%s] %s", getCallerInfo(), message)

	switch level {
	case "WARNING":
		if warnLog != nil {
			warnLog.Println(logEntry)
		}
	case "ERROR":
		if errorLog != nil {
			errorLog.Println(logEntry)
		}
	default:
		if infoLog != nil {
			infoLog.Println(logEntry)
		}
	}
}

func Info(format string, v ...interface{}) {
	logf("INFO", format, v...)
}

func Warn(format string, v ...interface{}) {
	logf("WARNING", format, v...)
}

func Error(format string, v ...interface{}) {
	logf("ERROR", format, v...)
}
