package main

import (
	"os"

	"github.com/hocktide/v-c-tool/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
