package commands

// ANSI codes for terminal output.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
)
