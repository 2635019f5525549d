//go:build e2e && unix

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

// seedDatabase fills a database in dir through the seed command and
// returns its path
func seedDatabase(dir string, customers, invoices int) (string, error) {
	db := filepath.Join(dir, "crm.db")
	cmd := exec.Command(binPath, "--db", db, "seed",
		"--customers", strconv.Itoa(customers),
		"--invoices", strconv.Itoa(invoices),
		"--seed", "42")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("seed failed: %w\n%s", err, out)
	}
	return db, nil
}

// startSeeded seeds a fresh workspace and starts the app on it
func startSeeded(t *testing.T, customers, invoices int) (*terminal, error) {
	dir := t.TempDir()
	db, err := seedDatabase(dir, customers, invoices)
	if err != nil {
		return nil, err
	}
	return startTerminal(t, dir, "--db", db)
}
