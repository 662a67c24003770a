package main

import "github.com/civiport/report-management/cmd"

func main() {
	cmd.Execute()
}
