package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireWritesPIDRecord(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	content, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatalf("lock file unreadable: %v", err)
	}
	if want := fmt.Sprintf("pid=%d\n", os.Getpid()); string(content) != want {
		t.Errorf("lock record = %q, want %q", content, want)
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	defer first.Release()

	second, err := AcquireLock(dir)
	if err == nil {
		second.Release()
		t.Fatal("a second instance acquired the same state directory")
	}

	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("error type = %T, want *LockError", err)
	}
	// The holder's PID is reported so the operator can tell a live instance
	// from a stale file.
	if !strings.Contains(lockErr.ExistingInfo, strconv.Itoa(os.Getpid())) {
		t.Errorf("ExistingInfo = %q, want the holder's PID", lockErr.ExistingInfo)
	}
	if !strings.Contains(lockErr.ExistingInfo, "running") {
		t.Errorf("ExistingInfo = %q, want liveness noted", lockErr.ExistingInfo)
	}
	msg := err.Error()
	if !strings.Contains(msg, "already running") {
		t.Errorf("message should say another instance is running: %q", msg)
	}
	if !strings.Contains(msg, filepath.Join(dir, LockFileName)) {
		t.Errorf("message should name the lock file: %q", msg)
	}
}

func TestReleaseRemovesLockFile(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, LockFileName)

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Fatalf("lock file missing while held: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file still present after release")
	}

	// Releasing again is a no-op, not an error.
	if err := lock.Release(); err != nil {
		t.Errorf("repeated Release failed: %v", err)
	}
}

func TestReleaseFreesDirectoryForNextInstance(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	first.Release()

	second, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("directory still locked after release: %v", err)
	}
	second.Release()
}

func TestAcquireCreatesStateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reception", "state")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock should create the nested directory: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("state directory missing: %v", err)
	}
}

func TestExtractPIDFromLockInfo(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"plain record", "pid=4821\n", 4821},
		{"trailing fields", "pid=99 host=lobby\n", 99},
		{"digits cut at first letter", "pid=12x", 12},
		{"missing value", "pid=", 0},
		{"unrelated content", "owner=reception", 0},
		{"empty", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractPIDFromLockInfo(tc.content); got != tc.want {
				t.Errorf("extractPIDFromLockInfo(%q) = %d, want %d", tc.content, got, tc.want)
			}
		})
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !isProcessRunning(os.Getpid()) {
		t.Error("the test process itself should count as running")
	}
	// PIDs this large are not handed out on any supported platform.
	if isProcessRunning(1 << 30) {
		t.Log("implausible PID reported as running; liveness hint may be wrong here")
	}
}
