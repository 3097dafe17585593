package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facecam/pkg/camera"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List camera presets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRESOLUTION\tFPS")
		for _, name := range camera.PresetNames() {
			p := camera.GetPreset(name)
			fmt.Fprintf(w, "%s\t%dx%d\t%d\n", name, p.Width, p.Height, p.Framerate)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
