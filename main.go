package main

import "storepos/cmd"

func main() {
	cmd.Execute()
}
