package main

import "github.com/gatehouse/apiserver/cmd"

func main() {
	cmd.Execute()
}
