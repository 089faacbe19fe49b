package main

import "github.com/droidnav/droidnav/pkg/cli"

func main() {
	cli.Execute()
}
