package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/domly/pkg"
)

// Version prints the program name and version.
type Version struct {
	stdout io.Writer
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	_, err := fmt.Fprintln(stdout(ctx, v.stdout), pkg.Name, pkg.Version)

	return err
}
