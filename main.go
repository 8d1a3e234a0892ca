package main

import "github.com/routelab/nethub/cmd"

func main() {
	cmd.Execute()
}
