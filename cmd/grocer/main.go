// Package main is the entry point for grocer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/donaldgifford/grocery-autopilot/cmd/grocer/cmd"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			fmt.Fprint(os.Stderr, derr.Format())
			os.Exit(derr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(domain.ExitInternalError)
	}
}
