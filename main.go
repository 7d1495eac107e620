package main

import "github.com/retracehq/retrace/internal/cmd"

func main() {
	cmd.Execute()
}
