package main

import "github.com/malonzhao/cline/cmd"

func main() {
	cmd.Execute()
}
