package main

import "github.com/Noah170803/eventio/cmd/server/cmd"

func main() {
	cmd.Execute()
}
