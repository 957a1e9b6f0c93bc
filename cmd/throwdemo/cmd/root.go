package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "throwdemo",
	Short: "Replays raise/rethrow/log scenarios with throw-time context",
	Long: `throwdemo runs small raise/propagate/log scenarios and prints the
resulting JSON log lines, so the merge of ambient and captured context can be
inspected with a given configuration.

Scenarios:
  outer     - property from an enclosing scope survives a re-raise
  override  - the log-time value wins over the captured one
  popped    - an override popped before logging does not leak
  replace   - a new error instance starts from its own raise site
  async     - context follows a flow across goroutines`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $THROWCTX_CONFIG or ./throwctx.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log internal capture failures")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
