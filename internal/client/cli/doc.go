// Package cli provides the interactive mediagate operator client.
//
// Each line typed at the prompt is sent verbatim to the command service as
// the configured caller, and the reply text is printed back. A background
// watcher pings the service and shows online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
