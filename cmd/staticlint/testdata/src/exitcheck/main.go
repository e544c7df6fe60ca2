package main

import (
	"os"
	osx "os"
)

func helper() {
	os.Exit(2)
}

// Exit не имеет отношения к os.
func Exit(int) {}

func main() {
	helper()
	Exit(4)
	defer func() {
		osx.Exit(3) // want `main.go:19: direct call os.Exit is not allowed in main function`
	}()
	os.Exit(1) // want `main.go:21: direct call os.Exit is not allowed in main function`
}
