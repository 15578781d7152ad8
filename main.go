package main

import (
	_ "time/tzdata"

	"github.com/theirongolddev/thenumber/cmd"
)

func main() {
	cmd.Execute()
}
