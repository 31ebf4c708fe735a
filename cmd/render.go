package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-drumseq/config"
	"go-drumseq/debug"
	"go-drumseq/host"
	"go-drumseq/midi"
)

var (
	argBars  int
	argBlock int
	argOut   string

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render bars offline and print the events or write a MIDI file",

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), cfg, argBars, argBlock, argOut)
		},
	}
)

func init() {
	renderCmd.Flags().IntVarP(&argBars, "bars", "b", 4, "Number of bars to render")
	renderCmd.Flags().IntVarP(&argBlock, "block", "", 0, "Block size in frames (default from session)")
	renderCmd.Flags().StringVarP(&argOut, "out", "o", "", "Write a Standard MIDI File instead of printing events")

	rootCmd.AddCommand(renderCmd)
}

func render(w io.Writer, cfg *config.Config, bars, block int, out string) error {
	if bars < 1 {
		return errors.Errorf("bars must be positive, got %d", bars)
	}
	if block <= 0 {
		block = cfg.Block()
	}

	e, err := cfg.Build()
	if err != nil {
		return err
	}
	tr := e.Transport()
	events := host.RenderBars(e, bars, block)
	debug.Log("render", "%d bars of %s in %d frame blocks: %d events, %d dropped", bars, tr, block, len(events), e.Dropped())

	if out == "" {
		fmt.Fprintln(w, tr)
		for _, ev := range events {
			fmt.Fprintln(w, ev)
		}
		if d := e.Dropped(); d > 0 {
			fmt.Fprintf(w, "dropped %d events, raise capacity\n", d)
		}
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.WithStack(err)
	}
	tl := midi.Timeline{
		SampleRate: tr.SampleRate,
		BPM:        tr.BPM,
		Beats:      uint8(min(tr.Signature.Beats, 255)),
		Unit:       uint8(min(tr.Signature.Unit, 255)),
	}
	if err := midi.WriteSMF(f, events, tl); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(w, "wrote %d events to %s\n", len(events), out)
	return nil
}
