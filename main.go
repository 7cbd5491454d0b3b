package main

import "github.com/sobatmedia/smm-store/cmd"

func main() {
	cmd.Execute()
}
