// Command jsonlog formats NDJSON log events with formatters defined in a
// configuration file.
//
//	jsonlog validate --config logging.yaml
//	jsonlog format --config logging.yaml --formatter access < events.ndjson
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
