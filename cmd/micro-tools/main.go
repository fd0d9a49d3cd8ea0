// Command micro-tools runs the image tools without the desktop UI.
//
//	micro-tools tools
//	micro-tools convert -tool png-to-jpeg -out ./out a.png b.png
//	micro-tools convert -presets presets.yaml -preset thumbs ./photos
//	micro-tools watch -tool webp-to-png -in ./inbox -out ./done
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/microtools/micro-tools/internal/tools"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("micro-tools: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "tools":
		listTools(stdout)
		return exitOK
	case "convert":
		err = runConvert(ctx, args[1:], stdout)
	case "watch":
		err = runWatch(ctx, args[1:], stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		log.Printf("unknown command %q", args[0])
		usage(stdout)
		return exitUsage
	}

	var usageErr *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &usageErr):
		log.Print(err)
		return exitUsage
	default:
		log.Print(err)
		return exitError
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: micro-tools <command> [flags] [files...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  tools     list the available tools")
	fmt.Fprintln(w, "  convert   convert files or folders and save the result")
	fmt.Fprintln(w, "  watch     convert images as they appear in a folder")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "run 'micro-tools <command> -h' for the flags of a command")
}

func listTools(w io.Writer) {
	for _, tool := range tools.All() {
		if tool.Resize {
			fmt.Fprintf(w, "%-14s any image -> %s (resized)\n", tool.ID, tool.Target)
			continue
		}
		fmt.Fprintf(w, "%-14s %v -> %s\n", tool.ID, tool.Accept, tool.Target)
	}
}

// usageError marks errors caused by bad command line input
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
