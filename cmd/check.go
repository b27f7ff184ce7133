package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/tmin/reduce"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Evaluate the oracle once on a file",
	Long: `Checks that FILE parses and satisfies the oracle, which is what reduce requires
of its inputs. Exits with status 1 when it does not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, _, err := reduce.New(config, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize reduction engine: %w", err)
		}

		ok, err := engine.Check(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s does not reproduce", args[0])
		}
		fmt.Printf("%s reproduces\n", args[0])
		return nil
	},
}
