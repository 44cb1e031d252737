package console

import (
	"fmt"
	"strings"

	"mipy/internal/constants"
)

const (
	ColorReset  = constants.ColorReset
	ColorBold   = constants.ColorBold
	ColorDim    = constants.ColorDim
	ColorCyan   = constants.ColorCyan
	ColorGreen  = constants.ColorGreen
	ColorYellow = constants.ColorYellow
	ColorRed    = constants.ColorRed
)

func PrintBanner() {
	fmt.Println()
	fmt.Printf("  %s%s%s%s %sv%s%s\n", constants.ColorBold, constants.ColorCyan, constants.AppName, constants.ColorReset, constants.ColorBold, constants.Version, constants.ColorReset)
	fmt.Printf("  %sMikrotik Hotspot Voucher Generator%s\n", constants.ColorDim, constants.ColorReset)
	fmt.Println()
}

func PrintHint(text string) {
	fmt.Printf("  %s%s%s\n", ColorDim, text, ColorReset)
}

func PrintStep(number int, text string) {
	fmt.Printf("  %s%s%d ▸%s %s\n", ColorBold, ColorCyan, number, ColorReset, text)
}

func PrintField(label, value, valueColor string) {
	fmt.Printf("  %s%-12s%s %s%s%s\n", ColorDim, label, ColorReset, valueColor, value, ColorReset)
}

func PrintSep() {
	fmt.Printf("  %s%s%s\n", ColorDim, strings.Repeat("─", 50), ColorReset)
}

func PrintOK(text string) {
	fmt.Printf("  %s✓ %s%s\n", ColorGreen, text, ColorReset)
}

func PrintFail(text string) {
	fmt.Printf("  %s✗ %s%s\n", ColorRed, text, ColorReset)
}

// Mask hides all but the last two characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 2 {
		return strings.Repeat("•", len(secret))
	}
	return strings.Repeat("•", len(secret)-2) + secret[len(secret)-2:]
}
