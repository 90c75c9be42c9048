//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build tidies deps, then compiles the server and tools into ./bin.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building binaries...")
	for _, cmd := range []string{"api", "migrate", "seed_foods"} {
		if err := sh.Run("go", "build", "-o", "bin/"+cmd, "./cmd/"+cmd); err != nil {
			return err
		}
	}
	return nil
}

// Run builds then starts the API and pages on SERVER_PORT.
func Run() error {
	mg.Deps(Build)
	loadEnv()
	fmt.Println(">> Starting server...")
	return sh.RunV("./bin/api")
}

// Migrate applies the database schema.
func Migrate() error {
	mg.Deps(Build)
	loadEnv()
	return sh.RunV("./bin/migrate")
}

// Seed loads the nutrition dataset into the foods table.
func Seed() error {
	mg.Deps(Migrate)
	return sh.RunV("./bin/seed_foods")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs the unit tests. Container backed tests skip themselves without docker.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "-short", "./...")
}

// Integration runs every test, including the testcontainers suites.
func Integration() error {
	fmt.Println(">> Running tests with containers...")
	return sh.RunV("go", "test", "-count=1", "./...")
}

// Lint runs go vet, and golangci-lint when installed.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping")
		return nil
	}
	return sh.RunV("golangci-lint", "run")
}

// Clean removes build output.
func Clean() error {
	fmt.Println(">> Cleaning bin/...")
	return os.RemoveAll("bin")
}

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(">> no .env file; using the environment")
	}
}
