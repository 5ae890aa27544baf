package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		var ee *cli.ExitError
		if errors.As(err, &ee) {
			if ee.Message != "" {
				fmt.Fprintf(os.Stderr, "error: %s\n", ee.Message)
			}
			os.Exit(ee.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.ExitInternal)
	}
}
