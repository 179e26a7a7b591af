// Package cli holds the small terminal presentation helpers used during
// startup: ANSI colors and status glyphs. Honors the NO_COLOR convention.
package cli

import (
	"fmt"
	"os"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
)

// disableColor is a cached check for the environment variable
var disableColor = checkNoColor()

func checkNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// Stylize wraps text in a specific color code
func Stylize(text string, colorCode string) string {
	if disableColor {
		return text
	}
	return fmt.Sprintf("%s%s%s", colorCode, text, Reset)
}

func CheckMark() string {
	return Stylize("✓", Green)
}

func WarningSign() string {
	return Stylize("!", Yellow)
}

func CrossMark() string {
	return Stylize("✗", Red)
}
