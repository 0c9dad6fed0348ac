package main

import (
	"os"

	"shelfwatch-product-harvester/cmd/harvester/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
