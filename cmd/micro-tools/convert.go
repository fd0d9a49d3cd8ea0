package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/microtools/micro-tools/internal/convert"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/platform"
)

func runConvert(ctx context.Context, args []string, stdout io.Writer) error {
	fs, f := newFlagSet("convert", stdout)
	if err := f.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usagef("convert needs at least one file or folder")
	}

	tool, opts, err := f.resolve()
	if err != nil {
		return err
	}
	sel, err := readSelection(fs.Args())
	if err != nil {
		return err
	}
	outDir, err := f.outputDir()
	if err != nil {
		return err
	}

	pipeline, err := tool.Pipeline(opts)
	if err != nil {
		return err
	}
	pipeline.OnProgress = func(done, total int) {
		log.Printf("%s: %d/%d", tool.ID, done, total)
	}

	path, err := convertAndSave(ctx, pipeline, sel, outDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// readSelection reads files in argument order. A folder contributes the
// images directly inside it.
func readSelection(args []string) (model.SelectionSet, error) {
	var files []model.InputFile
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return model.SelectionSet{}, err
		}

		paths := []string{arg}
		if info.IsDir() {
			paths, err = platform.DiscoverImages(arg)
			if err != nil {
				return model.SelectionSet{}, err
			}
			if len(paths) == 0 {
				log.Printf("no images in %s", arg)
			}
		}

		for _, path := range paths {
			in, err := platform.ReadInputFile(path)
			if err != nil {
				return model.SelectionSet{}, err
			}
			files = append(files, in)
		}
	}
	if len(files) == 0 {
		return model.SelectionSet{}, convert.ErrEmptySelection
	}
	return model.NewSelectionSet(files...), nil
}

// convertAndSave runs the pipeline and writes the deliverable into outDir
func convertAndSave(ctx context.Context, pipeline *convert.Pipeline, sel model.SelectionSet, outDir string) (string, error) {
	result, err := pipeline.Convert(ctx, sel)
	if result != nil {
		for _, o := range result.Failures() {
			log.Printf("skipped %s: %v", o.Input, o.Err)
		}
	}
	if err != nil {
		return "", err
	}

	path, err := platform.SaveDeliverable(outDir, result.Deliverable)
	if err != nil {
		return "", err
	}
	if result.Skipped > 0 {
		log.Printf("converted %d of %d files", result.Converted, sel.Len())
	}
	return path, nil
}
