package main

import "github.com/MeKo-Tech/tilemarch/cmd/marcher/cmd"

func main() {
	cmd.Execute()
}
