//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "landing"

// Default target to run when none is specified
var Default = Build

func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(out) == "" {
		return "dev"
	}
	return strings.TrimSpace(out)
}

// Build compiles the landing binary
func Build() error {
	ldflags := fmt.Sprintf("-s -w -X main.version=%s", version())
	return sh.RunV("go", "build", "-trimpath", "-ldflags", ldflags, "-o", binary, ".")
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// TestPostgres runs the database suite against LANDING_TEST_DATABASE_URL
func TestPostgres() error {
	if os.Getenv("LANDING_TEST_DATABASE_URL") == "" {
		return fmt.Errorf("LANDING_TEST_DATABASE_URL is not set")
	}
	return sh.RunV("go", "test", "-count=1", "./internal/database/...", "./internal/storage/...")
}

// Lint runs go vet
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs lint then tests
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output
func Clean() error {
	return sh.Rm(binary)
}
