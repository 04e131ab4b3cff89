package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mediagate/internal/client/client"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs.
type execIface interface {
	Execute(ctx context.Context, line string) (string, error)
}

// runREPL reads lines from scanner and forwards each non-empty one to a.
// The loop exits on EOF, on "exit" or "quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mg (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		reply, err := a.Execute(ctx, line)
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			printlnFn("Rejected: check the caller id and service secret.")
		case errors.Is(err, client.ErrUnavailable):
			printlnFn("Command service unavailable, try again later.")
		case err != nil:
			printlnFn("Error:", err)
		default:
			printlnFn(reply)
		}
	}
}
