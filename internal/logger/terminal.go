package logger

import "os"

// isTerminal reports whether f looks like an interactive terminal, used only
// to decide whether to colorize text-format log output.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
