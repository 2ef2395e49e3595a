package main

import "github.com/eoffice/office-management/cmd"

func main() {
	cmd.Execute()
}
