package main

import "candreg/cmd"

func main() {
	cmd.Execute()
}
