package oracle

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gnolang/tmin/internal/reducer"
	tt "github.com/gnolang/tmin/internal/types"
)

var ErrNoOracle = errors.New("no oracle configured")

// FromConfig builds the oracle described by cfg. ext is the extension
// given to temporary files handed to a command.
func FromConfig(cfg tt.OracleConfig, ext string) (reducer.Oracle, error) {
	var oracles []reducer.Oracle

	if cfg.Contains != "" {
		oracles = append(oracles, Contains(cfg.Contains))
	}
	if cfg.Regex != "" {
		re, err := NewRegexp(cfg.Regex)
		if err != nil {
			return nil, err
		}
		oracles = append(oracles, re)
	}

	if cfg.Command != "" {
		args, err := ParseCommand(cfg.Command)
		if err != nil {
			return nil, err
		}
		cmd := &Command{Args: args, Stdin: cfg.Stdin, ExitCode: cfg.ExitCode, Ext: ext}
		if cfg.Output != "" {
			if cmd.Output, err = regexp.Compile(cfg.Output); err != nil {
				return nil, fmt.Errorf("invalid output pattern: %w", err)
			}
		}
		oracles = append(oracles, cmd)
	} else if cfg.Stdin || cfg.ExitCode != nil || cfg.Output != "" {
		return nil, errors.New("stdin, exit code and output matching need an oracle command")
	}

	if cfg.Analyzer != "" {
		a, err := LookupAnalyzer(cfg.Analyzer)
		if err != nil {
			return nil, err
		}
		mode, err := ParseMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
		var message *regexp.Regexp
		if cfg.Message != "" {
			if message, err = regexp.Compile(cfg.Message); err != nil {
				return nil, fmt.Errorf("invalid message pattern: %w", err)
			}
		}
		oracles = append(oracles, NewAnalyzer(a, mode, message))
	}

	if len(oracles) == 0 {
		return nil, ErrNoOracle
	}
	return WithTimeout(All(oracles...), cfg.Timeout), nil
}
