// Command animix inspects and samples clip documents and runs playback
// scenarios from the command line.
package main

import (
	"log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("animix: %v", err)
	}
}
