package main

import (
	"github.com/robotalks/serialpacket/pkg/cli/sh"
	"github.com/robotalks/serialpacket/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
