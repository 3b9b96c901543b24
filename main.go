package main

import (
	"os"

	"github.com/ytakagi/excelquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
