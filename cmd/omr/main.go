package main

import "github.com/MeKo-Tech/gabarito/cmd/omr/cmd"

func main() {
	cmd.Execute()
}
