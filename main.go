package main

import "github.com/ydsf-surabaya/aidboard/cmd"

func main() {
	cmd.Execute()
}
