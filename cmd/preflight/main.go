// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	apiAddr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	reportDir := strings.TrimSpace(os.Getenv("REPORT_DIR"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (trigger route will 403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (poll routes will 401).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if apiAddr == "" {
		warn("ADDR is empty; default in your app may be used.")
	} else {
		ok("ADDR=" + apiAddr)
	}

	if db == "" {
		warn("DATABASE_URL empty — API will use the in-memory store; observations vanish on restart.")
	} else {
		ok("DATABASE_URL present")
	}

	if reportDir == "" {
		reportDir = "generated_reports"
		warn("REPORT_DIR empty — defaulting to " + reportDir)
	}
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		fail("REPORT_DIR not creatable: " + err.Error())
	}
	probe := filepath.Join(reportDir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		fail("REPORT_DIR not writable: " + err.Error())
	}
	_ = os.Remove(probe)
	ok("REPORT_DIR writable: " + reportDir)

	ok("preflight passed")
}
