// Package internal provides the engine behind the tmin command.
//
// The reduction algorithm itself lives in internal/reducer and knows nothing
// about files, languages or processes. This package binds it to them.
//
// Key components:
//
// Engine: reduces one file or source text. It picks the grammar from the
// file extension or a forced language, builds the oracle from an
// OracleConfig and returns a Report with the result and its statistics.
//
// Cache: remembers oracle verdicts keyed by oracle fingerprint and
// candidate text, optionally persisted between runs. Slow command oracles
// benefit the most, since reductions of similar inputs revisit the same
// candidates.
//
// Watcher: reruns a handler when watched files are written, which backs
// the --watch flag.
//
// Usage:
//
//	engine, err := internal.NewEngine(types.OracleConfig{Command: "gnovet {}"})
//	if err != nil {
//	    // handle error
//	}
//
//	report, err := engine.Run(ctx, "crash.gno")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(report.Reduced)
//
// This package is intended for internal use within tmin and should not be
// imported by external packages.
package internal
