package main

import "github.com/user/reelcut/cmd"

func main() {
	cmd.Execute()
}
