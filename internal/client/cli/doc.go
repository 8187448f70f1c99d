// Package cli implements the market sales client commands.
//
// Every command loads the configuration, opens the local record store and
// the configured remote backend, runs, and closes them again. The schedule
// command is the exception: it keeps running until interrupted.
//
// Commands:
//
//	boot                        run the startup reconciliation and report progress
//	push | pull | import        run one reconciliation step
//	transitions                 advance time-driven event statuses
//	schedule                    run scheduled work until SIGINT/SIGTERM
//	event create | event list   manage events
//	sale                        record a sale at an event
//	refund                      refund one line of a sale
package cli
