package theme

import (
	"fmt"
)

// Banner returns the kudos startup banner.
func Banner() string {
	const magenta = "\033[35m"
	const cyan = "\033[36m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		"  ♡ ♡ ♡   " + magenta + "K U D O S" + reset + "   ♡ ♡ ♡\n" +
		cyan + "   thank-you comments for Rakuten ROOM\n" + reset +
		yellow + "   ─────────────────────────────────\n" + reset
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
