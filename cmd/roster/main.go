// Command roster is the device client: it keeps the session and the
// last-known-good record cache in a local SQLite file and talks to the
// student collection in MongoDB.
package main

import (
	"os"

	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
)

func main() {
	if err := newRootCmd(defaultOpenRecords).Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
