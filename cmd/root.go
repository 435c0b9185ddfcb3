package cmd

import (
	"fmt"
	"os"

	"github.com/Conflux-Chain/confura-evm/config"
	"github.com/spf13/cobra"
)

var (
	flagVersion bool // print version and exit

	rootCmd = &cobra.Command{
		Use:   "evmrpc",
		Short: "Serves Ethereum compatible JSON-RPC over indexed chain data",
		Run:   start,
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&flagVersion, "version", "v", false, "If true, print version and exit")
}

func start(cmd *cobra.Command, args []string) {
	if flagVersion {
		config.DumpVersionInfo()
		return
	}

	cmd.Help()
}

// Execute is the command line entrypoint.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
