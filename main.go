package main

import "github.com/lifegate/church-mgmt/cmd"

func main() {
	cmd.Execute()
}
