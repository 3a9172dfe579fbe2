// Package main provides the entry point for the randomid command.
//
// Usage:
//
//	randomid keygen                          - Print a new key
//	randomid generate -n 1000000 --key-file k - Print IDs in permuted order
//	randomid permute -n 1000000 --key-file k 0 1 2
//	randomid verify -n 1000000 --key-file k  - Check the permutation is a bijection
package main

import (
	"github.com/fasaxc/randomid/internal/commands"
)

var (
	// Version information (set via ldflags)
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	commands.SetVersionInfo(Version, Commit, Date)
	commands.Execute()
}
