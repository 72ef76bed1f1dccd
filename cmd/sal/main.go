package main

import "github.com/salqa/sal/cli/internal/cmd"

func main() {
	cmd.Execute()
}
