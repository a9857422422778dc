// Command migrate applies or inspects the embedded database migrations
// without starting the API server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
