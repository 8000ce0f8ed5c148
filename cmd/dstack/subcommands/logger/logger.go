package logger

import (
	"io"
	"log"
)

// Null returns a logger that drops everything written to it.
// Tests pass it to tasks whose log output is not under assertion.
func Null() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func Default() *log.Logger {
	return log.Default()
}
