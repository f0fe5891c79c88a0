// Package launcher turns the operator's option flags into the environment
// the interception library reads, then replaces the current process with
// the target command.
package launcher
