// Command satmeta records satellite file metadata from a message bus into
// MongoDB and serves it over a read-only HTTP API.
package main

import (
	"os"

	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(mongodb.ExitCode(err))
	}
}
