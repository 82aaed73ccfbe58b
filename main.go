package main

import "github.com/platform-mesh/oauth-relation/cmd"

func main() {
	cmd.Execute()
}
