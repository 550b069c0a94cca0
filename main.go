package main

import "fieldsync/cmd"

func main() {
	cmd.Execute()
}
