package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	ErrorColor = color.New(color.FgRed, color.Bold)
	WarnColor  = color.New(color.FgYellow)
	InfoColor  = color.New(color.FgCyan)
	OkColor    = color.New(color.FgGreen)
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s %s: %v\n", ErrorColor.Sprint("✗"), msg, err)
	os.Exit(1)
}

// LogWarn logs a non-fatal warning.
func LogWarn(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("!"), msg, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", WarnColor.Sprint("!"), msg)
}

// LogInfo logs an informational message.
func LogInfo(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", InfoColor.Sprint("•"), msg)
}

// SelectOutputFile opens outputFile for writing, or returns stdout when
// the path is empty. Callers must not close stdout.
func SelectOutputFile(outputFile string) (*os.File, error) {
	if outputFile == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", outputFile, err)
	}
	return file, nil
}

// TruncatePath shortens a path for table display, keeping the tail.
func TruncatePath(path string, maxWidth int) string {
	if maxWidth <= 3 || len(path) <= maxWidth {
		return path
	}
	return "..." + path[len(path)-maxWidth+3:]
}
