package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/spf13/cobra"
)

var (
	probePort    int
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe <host>",
	Short: "Check that a TCP connection to the host can be opened",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]
		if err := config.ValidateHost(host); err != nil {
			return err
		}

		start := time.Now()
		err := utils.ProbeAddress(cmd.Context(), host, probePort, probeTimeout)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			fmt.Printf("%s %s:%d %s\n", failed("UNREACHABLE"), host, probePort, dim(err.Error()))
			return fmt.Errorf("probe failed after %s", elapsed)
		}
		fmt.Printf("%s %s:%d (%s)\n", ok("REACHABLE"), host, probePort, elapsed)
		return nil
	},
}

func init() {
	probeCmd.Flags().IntVar(&probePort, "port", config.ProbePort(), "TCP port to connect to")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", config.ProbeTimeout(), "give up after this long")
	rootCmd.AddCommand(probeCmd)
	rootCmd.SetContext(context.Background())
}
