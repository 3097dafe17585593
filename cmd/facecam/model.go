package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facecam/pkg/detection/yunet"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Download the face detection model if missing and check that it loads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("🧠 Loading %s\n", cfg.Model.ModelPath)
		m, err := yunet.NewLoader(cfg.Model).Load(cmd.Context())
		if err != nil {
			return err
		}
		defer m.Close()

		fmt.Println("✅ Model ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
}
