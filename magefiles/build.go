//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Cli builds the meshlodctl binary into ./bin.
func (Build) Cli() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/meshlodctl", "./cmd/meshlodctl"), withStream())
	return err
}

// Test runs the full test suite.
func (Build) Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Tidy runs go mod tidy.
func (Build) Tidy() error {
	return goModTidy()
}
