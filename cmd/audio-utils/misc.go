package main

import (
	"fmt"

	"audioutils/pkg/config"
	"audioutils/pkg/native"
	"audioutils/pkg/version"
)

// BackendsCmd lists the registered backends.
type BackendsCmd struct{}

// Execute implements flags.Commander.
func (c *BackendsCmd) Execute(_ []string) error {
	for _, n := range native.Names() {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Execute implements flags.Commander.
func (c *VersionCmd) Execute(_ []string) error {
	fmt.Fprintln(stdout, version.Version)
	return nil
}

// InitConfigCmd writes the default config to --config.
type InitConfigCmd struct{}

// Execute implements flags.Commander.
func (c *InitConfigCmd) Execute(_ []string) error {
	if err := config.GenerateDefault(globalOpts.Config); err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}
	fmt.Fprintf(stdout, "Config file generated: %s\n", globalOpts.Config)
	return nil
}
