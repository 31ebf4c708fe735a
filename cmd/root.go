package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-drumseq/config"
	"go-drumseq/debug"
)

var (
	// arguments
	argConfig string
	argDebug  bool

	rootCmd = &cobra.Command{
		Use:           "go-drumseq",
		Short:         "Sample-accurate drum pattern sequencer",
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !argDebug {
				return nil
			}
			if err := debug.Enable(); err != nil {
				return errors.Wrap(err, "enable debug log")
			}
			debug.Log("main", "go-drumseq %s", cmd.Name())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Disable()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&argConfig, "config", "c", "", "Session file (.json, .yaml); default ~/.config/go-drumseq/config.json")
	rootCmd.PersistentFlags().BoolVarP(&argDebug, "debug", "d", false, "Write a debug log to "+debug.Path())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the session named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	if argConfig == "" {
		return config.Load()
	}
	return config.LoadFile(argConfig)
}
