// Command checklistctl drives the checklist workflow from a terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", appErr.Code, appErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
