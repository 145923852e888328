package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/garage-api/internal/utils"
)

var genkeyBytes int

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Print a random hex secret suitable for JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		if genkeyBytes < 32 {
			return fmt.Errorf("--bytes must be at least 32, got %d", genkeyBytes)
		}
		key, err := utils.RandomHex(genkeyBytes)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	genkeyCmd.Flags().IntVar(&genkeyBytes, "bytes", 32, "number of random bytes")
	rootCmd.AddCommand(genkeyCmd)
}
