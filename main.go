package main

import (
	"github.com/luma/topicsender/cmd"
)

func main() {
	cmd.Execute()
}
