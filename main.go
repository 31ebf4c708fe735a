package main

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-drumseq/cmd"
)

func main() {
	cmd.Execute()
}
