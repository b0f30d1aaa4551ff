package main

import "github.com/kiesman99/slidedeck/cmd"

func main() {
	cmd.Execute()
}
