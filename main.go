package main

import "github.com/ValentinKolb/dJSON/cmd"

func main() {
	cmd.Execute()
}
