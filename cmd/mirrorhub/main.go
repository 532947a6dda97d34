package main

import "github.com/go-arrower/mirrorhub/cmd"

func main() {
	cmd.Execute()
}
