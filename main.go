package main

import (
	"os"

	"github.com/Z3belek/cpar/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
