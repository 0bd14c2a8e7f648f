package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Binusha25Liyanage/MoneyMate/internal/config"
)

func TestCreateMemoryBackendFromFiles(t *testing.T) {
	dir := t.TempDir()
	txs := `[{"user_id":1,"amount":"12.50","type":"expense","category":"Food","transaction_date":"2024-03-02","description":"lunch"}]`
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(txs), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	got, err := res.Backend.TransactionsByMonth(context.Background(), 1, 3, 2024)
	if err != nil {
		t.Fatalf("TransactionsByMonth: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Food" {
		t.Fatalf("unexpected transactions %+v", got)
	}
}

func TestCreateSQLiteBackendMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "moneymate.db")

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: path,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if err := res.Backend.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	rows, err := res.Backend.SavingsGoalProgress(context.Background(), 1)
	if err != nil {
		t.Fatalf("SavingsGoalProgress: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestCreateBackendValidates(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown type", Config{Type: "oracle"}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
		{"postgres without url", Config{Type: PostgresBackend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFactory(nil).CreateBackend(context.Background(), tt.config); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", DatabaseURL: "postgres://localhost/db", DataDir: "seed"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DatabaseURL != "postgres://localhost/db" || cfg.DataDirectory != "seed" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
