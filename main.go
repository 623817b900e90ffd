package main

import "github.com/dt-pm-tools/ground-control/cmd"

func main() {
	cmd.Execute()
}
