package main

import "github.com/aislelist/aislelist/apps/cli/cmd"

func main() {
	cmd.Execute()
}
