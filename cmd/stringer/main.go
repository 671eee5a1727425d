package main

import (
	"os"

	"github.com/CompassSecurity/stringer/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
