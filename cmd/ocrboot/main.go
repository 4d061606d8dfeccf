package main

import (
	"os"

	"ocrboot/internal/bootctl"
)

func main() {
	os.Exit(bootctl.Main())
}
