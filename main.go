package main

import "github.com/fadliRafidan/smart-lock-api/cmd"

func main() {
	cmd.Execute()
}
