package videocourse

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

var (
	verboseMode bool
	logger      = hclog.New(&hclog.LoggerOptions{
		Name:   "videocourse",
		Level:  hclog.Info,
		Output: os.Stderr,
	})
)

// Logger returns the package logger. Commands name sub-loggers off it.
func Logger() hclog.Logger {
	return logger
}

// SetVerbose sets the global verbose mode
func SetVerbose(verbose bool) {
	verboseMode = verbose
	if verbose {
		logger.SetLevel(hclog.Debug)
	} else {
		logger.SetLevel(hclog.Info)
	}
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	if verboseMode {
		logger.Debug(fmt.Sprintf(format, v...))
	}
}
