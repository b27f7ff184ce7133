package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gnolang/tmin/internal/oracle"
	"github.com/gnolang/tmin/reduce"
)

// oracle flags, shared by every subcommand
var (
	oracleContains string
	oracleRegex    string
	oracleExec     string
	oracleStdin    bool
	oracleExitCode int
	oracleOutput   string
	oracleAnalyzer string
	oracleMode     string
	oracleMessage  string
	oracleTimeout  time.Duration
	language       string
)

func addOracleFlags(flags *pflag.FlagSet) {
	flags.StringVar(&oracleContains, "contains", "", "Reproduce when the text contains this string")
	flags.StringVar(&oracleRegex, "regex", "", "Reproduce when the text matches this regular expression")
	flags.StringVar(&oracleExec, "exec", "", "Command to run on each candidate; {} is replaced by the candidate file")
	flags.BoolVar(&oracleStdin, "stdin", false, "Pipe the candidate to the command instead of passing a file")
	flags.IntVar(&oracleExitCode, "exit-code", 0, "Exit code the command must return (default: any non-zero)")
	flags.StringVar(&oracleOutput, "output-match", "", "Regular expression the command output must match")
	flags.StringVar(&oracleAnalyzer, "analyzer", "", fmt.Sprintf("Analyzer to run on Go candidates (%s)", strings.Join(oracle.Analyzers(), ", ")))
	flags.StringVar(&oracleMode, "mode", "", "Analyzer oracle mode: report or panic")
	flags.StringVar(&oracleMessage, "message", "", "Regular expression analyzer diagnostics must match")
	flags.DurationVar(&oracleTimeout, "oracle-timeout", 0, "Time limit for a single oracle evaluation, e.g. 5s")
	flags.StringVar(&language, "lang", "", "Language of the inputs (default: by file extension)")
}

// loadConfig reads the configuration file and applies the flags that were
// set on cmd.
func loadConfig(cmd *cobra.Command) (reduce.Config, error) {
	config, err := reduce.LoadConfig(cfgFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("contains") {
		config.Oracle.Contains = oracleContains
	}
	if flags.Changed("regex") {
		config.Oracle.Regex = oracleRegex
	}
	if flags.Changed("exec") {
		config.Oracle.Command = oracleExec
	}
	if flags.Changed("stdin") {
		config.Oracle.Stdin = oracleStdin
	}
	if flags.Changed("exit-code") {
		code := oracleExitCode
		config.Oracle.ExitCode = &code
	}
	if flags.Changed("output-match") {
		config.Oracle.Output = oracleOutput
	}
	if flags.Changed("analyzer") {
		config.Oracle.Analyzer = oracleAnalyzer
	}
	if flags.Changed("mode") {
		config.Oracle.Mode = oracleMode
	}
	if flags.Changed("message") {
		config.Oracle.Message = oracleMessage
	}
	if flags.Changed("oracle-timeout") {
		config.Oracle.Timeout = oracleTimeout
	}
	if flags.Changed("lang") {
		config.Language = language
	}

	applyReduceFlags(flags, &config)
	return config, nil
}
