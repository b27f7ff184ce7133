package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gnolang/tmin/formatter"
	"github.com/gnolang/tmin/internal"
	tt "github.com/gnolang/tmin/internal/types"
	"github.com/gnolang/tmin/internal/writer"
	"github.com/gnolang/tmin/reduce"
)

var (
	jobs       int
	inPlace    bool
	dryRun     bool
	gofmt      bool
	jsonOutput bool
	outPath    string
	cacheDir   string
	watch      bool
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [paths...]",
	Short: "Reduce files while the oracle keeps reproducing",
	Long: `Reduces each file to a smaller text that still parses and still satisfies the oracle.
Example) tmin reduce --exec "gnovet {}" --output-match "panic" crash.gno`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if watch && config.Output.InPlace {
			return errors.New("--watch cannot be combined with --in-place")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		if !watch {
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		engine, cache, err := reduce.New(config, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize reduction engine: %w", err)
		}
		if cache != nil {
			defer func() {
				if err := cache.Save(); err != nil {
					logger.Error("Error saving cache", zap.Error(err))
				}
				logger.Info("cache", zap.Int64("hits", cache.Hits()), zap.Int64("misses", cache.Misses()))
			}()
		}

		w := writer.New(dryRun, config.Output.InPlace, config.Output.Gofmt)
		w.Suffix = config.Output.Suffix
		w.Out = os.Stderr

		process := func(ctx context.Context, e reduce.ReduceEngine, path string) (*tt.Report, error) {
			return reduceAndWrite(ctx, engine, w, path)
		}

		if watch {
			return runWatch(ctx, args, process)
		}

		reports, err := reduce.ProcessFiles(ctx, logger, engine, args, config.Jobs, process)
		if err != nil {
			return err
		}
		return printReports(reports, jsonOutput, outPath)
	},
}

func addReduceFlags(flags *pflag.FlagSet) {
	flags.IntVarP(&jobs, "jobs", "j", 1, "Number of files reduced in parallel")
	flags.BoolVar(&inPlace, "in-place", false, "Overwrite inputs, keeping a .orig backup")
	flags.BoolVar(&dryRun, "dry-run", false, "Report results without writing any file")
	flags.BoolVar(&gofmt, "gofmt", false, "Format Go results when the oracle still accepts them")
	flags.BoolVar(&jsonOutput, "json", false, "Output reports in JSON format")
	flags.StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	flags.StringVar(&cacheDir, "cache", "", "Directory of the persistent verdict cache; clear it when the tool under test changes")
	flags.BoolVar(&watch, "watch", false, "Reduce again whenever an input file is written")
}

func applyReduceFlags(flags *pflag.FlagSet, config *reduce.Config) {
	if flags.Changed("jobs") {
		config.Jobs = jobs
	}
	if flags.Changed("in-place") {
		config.Output.InPlace = inPlace
	}
	if flags.Changed("gofmt") {
		config.Output.Gofmt = gofmt
	}
	if flags.Changed("cache") {
		config.Cache.Dir = cacheDir
	}
}

func init() {
	addReduceFlags(reduceCmd.Flags())
}

// reduceAndWrite reduces path, then formats and stores the result.
func reduceAndWrite(ctx context.Context, engine *internal.Engine, w *writer.Writer, path string) (*tt.Report, error) {
	report, err := engine.Run(ctx, path)
	if err != nil {
		return nil, err
	}

	if w.Gofmt {
		o, err := engine.Oracle(path)
		if err != nil {
			return nil, err
		}
		text, err := w.Finalize(ctx, report.Language, report.Reduced, o)
		if err != nil {
			return nil, err
		}
		report.Reduced = text
	}

	out, err := w.Write(path, report.Reduced)
	if err != nil {
		return nil, err
	}
	report.Output = out
	return report, nil
}

func runWatch(ctx context.Context, paths []string, process reduce.Processor) error {
	watcher, err := internal.NewWatcher(logger, func(ctx context.Context, filename string) {
		report, err := process(ctx, nil, filename)
		if err != nil {
			logger.Error("Error reducing file", zap.String("file", filename), zap.Error(err))
			return
		}
		fmt.Print(formatter.GenerateFormattedReport([]*tt.Report{report}))
	})
	if err != nil {
		return err
	}
	if err := watcher.Add(paths...); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %d file(s), press Ctrl+C to stop\n", len(paths))
	return watcher.Run(ctx)
}

func printReports(reports []*tt.Report, isJson bool, jsonOutput string) error {
	if !isJson {
		fmt.Print(formatter.GenerateFormattedReport(reports))
		return nil
	}

	d, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling reports to JSON: %w", err)
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
