package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned when [log] appName is missing from main.toml.
	ErrAppNameIsEmpty = errors.New("log.appName must be set in main.toml")

	// ErrServiceNameIsEmpty is returned when [log] serviceName is missing from main.toml.
	ErrServiceNameIsEmpty = errors.New("log.serviceName must be set in main.toml")
)

// ErrorHandler reports events zerolog failed to write. It must not log
// through zerolog itself.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "grouproster: dropped log event: %v\n", err)
}
