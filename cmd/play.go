package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-drumseq/config"
	"go-drumseq/debug"
	"go-drumseq/host"
	"go-drumseq/midi"
	"go-drumseq/theme"
	"go-drumseq/tui"
)

var (
	argPort string

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play the session to a MIDI output with a live view",

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return play(cfg)
		},
	}
)

func init() {
	playCmd.Flags().StringVarP(&argPort, "port", "p", "", "MIDI output port (name or substring, default from session)")

	rootCmd.AddCommand(playCmd)
}

func play(cfg *config.Config) error {
	e, err := cfg.Build()
	if err != nil {
		return err
	}

	th := theme.New(nil)
	if cfg.UI.Palette != "" {
		palette, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			return err
		}
		th = theme.New(palette)
	}

	portName := cfg.SynthOutput.PortName
	if argPort != "" {
		portName = argPort
	}
	send, err := midi.OpenOut(portName)
	if err != nil {
		return errors.Wrap(err, "open MIDI output")
	}
	defer midi.Close()
	debug.Log("main", "playing %s on %q", e.Transport(), portName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := host.NewClock(e, send, cfg.Block())
	done := make(chan error, 1)
	go func() { done <- clock.Run(ctx) }()

	p := tea.NewProgram(tui.NewModel(e, clock, th), tea.WithAltScreen(), tea.WithContext(ctx))
	_, uiErr := p.Run()

	stop()
	if err := <-done; err != nil {
		return err
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return errors.Wrap(uiErr, "ui")
	}
	if d := e.Dropped(); d > 0 {
		fmt.Printf("dropped %d events, raise capacity\n", d)
	}
	return nil
}
