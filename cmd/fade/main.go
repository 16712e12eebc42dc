// Command fade simulates, previews and renders timed visibility
// animations.
package main

import (
	"os"

	"github.com/go-drift/fade/cmd/fade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
