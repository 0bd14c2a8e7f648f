package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing env file must be ignored, got %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MONEYMATE_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MONEYMATE_CLI_TEST", "")
	os.Unsetenv("MONEYMATE_CLI_TEST")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("MONEYMATE_CLI_TEST"); got != "from-file" {
		t.Fatalf("expected value from env file, got %q", got)
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, `"component":"app"`) {
		t.Fatalf("expected component field, got %q", out)
	}

	if _, err := SetupLogger(&config.Config{LogLevel: "loud"}, &buf); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSignalContext(t *testing.T) {
	ctx, stop := SignalContext(context.Background(), slog.Default())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled on SIGTERM")
	}
}
