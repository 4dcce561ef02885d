package main

import (
	"os"

	"github.com/grouproster/grouproster/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
