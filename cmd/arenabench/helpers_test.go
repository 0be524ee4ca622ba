package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}

// setFlags sets global flag variables for one test and restores them afterwards.
func setFlags(t *testing.T, policy, workload string, parallel int, asJSON bool) {
	t.Helper()
	oldPolicy, oldWorkload, oldParallel, oldJSON := runPolicy, runWorkload, runParallel, jsonOut
	oldCapacity, oldBacking := runCapacity, runBacking
	runPolicy, runWorkload, runParallel, jsonOut = policy, workload, parallel, asJSON
	runCapacity, runBacking = 1<<16, "heap"
	t.Cleanup(func() {
		runPolicy, runWorkload, runParallel, jsonOut = oldPolicy, oldWorkload, oldParallel, oldJSON
		runCapacity, runBacking = oldCapacity, oldBacking
	})
}
