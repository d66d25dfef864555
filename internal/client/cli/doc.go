// Package cli provides the enigma admin command-line client.
//
// Commands can be passed as arguments for one-shot use:
//
//	enigma-cli -a 127.0.0.1:50051 -s secret user create alice
//
// Without arguments an interactive prompt accepts the same commands, one per
// line, until "exit" or end of input.
package cli
