package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	t.Run("inline wins", func(t *testing.T) {
		got, err := loadCredentials(Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: path})
		if err != nil || string(got) != `{"inline":true}` {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		got, err := loadCredentials(Config{CredentialsFile: path})
		if err != nil || !strings.Contains(string(got), "service_account") {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := loadCredentials(Config{CredentialsFile: filepath.Join(dir, "missing.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		_, err := loadCredentials(Config{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	if _, err := c.WriteTable(context.Background(), "Transactions", nil); err == nil {
		t.Error("expected error when service is not initialized")
	}
	if _, err := c.ReadTable(context.Background(), "Transactions"); err == nil {
		t.Error("expected error when service is not initialized")
	}
}
