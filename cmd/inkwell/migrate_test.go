// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/pkg/errutil"
)

func TestMigrateCommand_HasExpectedActions(t *testing.T) {
	cmd := NewMigrateCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, action := range []string{"up", "down", "steps", "version", "force"} {
		assert.Contains(t, output, action, "Help missing %q action", action)
	}
}

func TestMigrateSteps_RejectsNonNumericArg(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"steps", "abc"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INVALID_ARG")
}

func TestMigrateForce_RejectsNonNumericArg(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"force", "1.5"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INVALID_ARG")
}

func TestMigrateSteps_RequiresArg(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"steps"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	require.Error(t, cmd.Execute())
}
