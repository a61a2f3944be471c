package main

import "github.com/nchapman/onboard/cmd"

func main() {
	cmd.Execute()
}
