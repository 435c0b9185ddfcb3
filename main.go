package main

import (
	"github.com/Conflux-Chain/confura-evm/cmd"
	"github.com/Conflux-Chain/confura-evm/config"
)

func main() {
	// ensure configuration initialized at first.
	config.Init()

	cmd.Execute()
}
