package main

import "github.com/MJE43/sicbo-sim/cmd"

func main() {
	cmd.Execute()
}
