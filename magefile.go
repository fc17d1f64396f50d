// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build builds the daclut executable into ./bin.
func Build() error {
	mg.Deps(Test)
	fmt.Println("Building daclut executable...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", "./bin/daclut", "./cmd/daclut")
}

// Test runs the unit tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Bench runs the pipeline benchmarks.
func Bench() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", ".")
}

// Install installs daclut into GOBIN.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/daclut")
}

// Arm builds daclut for a 32-bit Raspberry Pi.
func Arm() error {
	fmt.Println("Cross compiling daclut for linux/arm...")
	env := map[string]string{"GOOS": "linux", "GOARCH": "arm", "GOARM": "6"}
	return sh.RunWithV(env, "go", "build", "-ldflags", ldflags(), "-o", "./bin/daclut-arm", "./cmd/daclut")
}

func ldflags() string {
	version := os.Getenv("DACLUT_VERSION")
	if version == "" {
		version = "dev"
	}
	return "-X main.version=" + version
}
