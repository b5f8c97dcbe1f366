package main

import "f1dashboard/cmd"

func main() {
	cmd.Execute()
}
