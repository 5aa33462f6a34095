package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{
			name:         "no args prints help and exits clean",
			args:         []string{"kaizen"},
			expectedExit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			// Redirect stdout
			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			// Mock os.Exit
			oldOsExit := osExit
			var exitCode int
			osExit = func(code int) {
				exitCode = code
			}
			defer func() { osExit = oldOsExit }()

			main()

			// Restore stdout
			w.Close()
			os.Stdout = oldStdout
			var buf bytes.Buffer
			buf.ReadFrom(r)

			assert.Equal(t, tt.expectedExit, exitCode)
			assert.Contains(t, buf.String(), "kaizen")
			assert.Contains(t, buf.String(), "Available Commands")
		})
	}
}
