package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-drumseq/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",

	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.Close()
		return listPorts(cmd.OutOrStdout(), midi.OutPorts)
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func listPorts(w io.Writer, list func() ([]string, error)) error {
	fmt.Fprintln(w, "=== MIDI Output Ports ===")
	names, err := list()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, name := range names {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}
	return nil
}
