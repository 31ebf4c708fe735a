package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-drumseq/config"
)

var (
	argForce bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter session file",

		RunE: func(cmd *cobra.Command, args []string) error {
			path := argConfig
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return errors.WithStack(err)
				}
				path = p
			}
			return initSession(cmd.OutOrStdout(), config.DefaultConfig(), path, argForce)
		},
	}
)

func init() {
	initCmd.Flags().BoolVarP(&argForce, "force", "f", false, "Overwrite an existing session file")

	rootCmd.AddCommand(initCmd)
}

// initSession writes cfg to path unless a file is already there.
func initSession(w io.Writer, cfg *config.Config, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("%s already exists, use --force to overwrite", path)
	}

	defaultPath, err := config.ConfigPath()
	if err == nil && path == defaultPath {
		err = cfg.Save()
	} else {
		err = cfg.SaveFile(path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote session to %s\n", path)
	return nil
}
