package main

import (
	"github.com/dropforge/gitdrop/internal/cmd"
)

func main() {
	cmd.Execute()
}
