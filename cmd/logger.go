package main

import "log"

// appLogger adapts the standard loggers to the Infof/Errorf surface the
// delivery engine and services expect.
type appLogger struct {
	infoLog  *log.Logger
	errorLog *log.Logger
}

func (l *appLogger) Infof(format string, args ...interface{}) {
	l.infoLog.Printf(format, args...)
}

func (l *appLogger) Errorf(format string, args ...interface{}) {
	l.errorLog.Printf(format, args...)
}
