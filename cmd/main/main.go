// Command loremipsum generates placeholder text from statistical samples,
// manages stored samples and serves both over HTTP.
package main

import (
	"context"
	"os"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
