package exitlib

import "os"

// main в обычном пакете не точка входа.
func main() {
	os.Exit(1)
}

var _ = main
