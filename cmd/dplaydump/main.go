package main

import (
	"os"

	"github.com/vuuvv/vdplay"
)

func main() {
	vdplay.Setup()
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
