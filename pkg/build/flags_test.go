// SPDX-License-Identifier: MIT
package build

import "testing"

func TestInitializeDefaults(t *testing.T) {
	Initialize()

	flags := GetBuildFlags()
	if flags.Name == "" {
		t.Error("build name should never be empty")
	}
	if flags.Version == "" {
		t.Error("build version should never be empty")
	}
}

func TestInitializeOverrides(t *testing.T) {
	buildVersion = "1.2.3"
	buildCommit = "abc123"
	defer func() {
		buildVersion = ""
		buildCommit = ""
	}()

	Initialize()

	flags := GetBuildFlags()
	if flags.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", flags.Version)
	}
	if flags.Commit != "abc123" {
		t.Errorf("expected commit abc123, got %s", flags.Commit)
	}
}
