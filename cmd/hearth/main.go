package main

import "github.com/hearth-app/hearth/internal/cli"

func main() {
	cli.Execute()
}
