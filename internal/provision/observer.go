package provision

import "log"

// Observer receives progress output from the pipeline.
type Observer interface {
	Printf(format string, v ...interface{})
}

// ConsoleObserver logs through the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-backed observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// silentObserver discards all output; used by tests.
type silentObserver struct{}

func (silentObserver) Printf(string, ...interface{}) {}
