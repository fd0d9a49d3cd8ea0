package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/platform"
)

func runWatch(ctx context.Context, args []string, stdout io.Writer) error {
	fs, f := newFlagSet("watch", stdout)
	var in string
	fs.StringVar(&in, "in", "", "folder to watch")
	if err := f.parse(fs, args); err != nil {
		return err
	}
	if in == "" {
		return usagef("watch needs -in")
	}

	tool, opts, err := f.resolve()
	if err != nil {
		return err
	}
	outDir, err := f.outputDir()
	if err != nil {
		return err
	}
	if tool.Resize && samePath(in, outDir) {
		// The resizer accepts its own output and would never settle
		return usagef("%s cannot write into the folder it watches", tool.ID)
	}

	pipeline, err := tool.Pipeline(opts)
	if err != nil {
		return err
	}

	watcher, err := platform.NewFolderWatcher(in, tool.Accepts, 0)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	log.Printf("watching %s for %s, writing to %s", in, tool.ID, outDir)
	for {
		select {
		case <-ctx.Done():
			log.Printf("stopped watching %s", in)
			return nil
		case path, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			input, err := platform.ReadInputFile(path)
			if err != nil {
				log.Printf("failed to read %s: %v", path, err)
				continue
			}
			saved, err := convertAndSave(ctx, pipeline, model.NewSelectionSet(input), outDir)
			if err != nil {
				log.Printf("failed to convert %s: %v", path, err)
				continue
			}
			fmt.Fprintln(stdout, saved)
		}
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
