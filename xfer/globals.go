// Package xfer holds the command line front end of colorxfer.
package xfer

// Globals are flags shared by every command.
type Globals struct {
	Workers int  `help:"Goroutines used for per-pixel work, 0 for one per CPU" default:"0"`
	Verbose bool `help:"Log per-stage and per-cluster diagnostics" short:"v"`
}
