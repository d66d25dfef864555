package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// executor is the command surface the prompt needs; App satisfies it.
type executor interface {
	Execute(ctx context.Context, args []string) error
}

// runREPL reads one command per line and runs it. Errors are printed and the
// loop continues. It exits on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a executor, w io.Writer, scanner *bufio.Scanner) {
	fmt.Fprintln(w, "enigma admin CLI (type 'help' for commands)")
	for {
		fmt.Fprint(w, "enigma> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := a.Execute(ctx, parts); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
