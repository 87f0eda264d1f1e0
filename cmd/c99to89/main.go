package main

import (
	"fmt"
	"os"

	c99to89 "github.com/ngkaho1234/c99-to-c89/cmd/c99to89/impl"
)

func main() {
	app := c99to89.NewApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
