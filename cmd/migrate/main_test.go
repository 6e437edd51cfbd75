package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type stubVersion struct {
	version uint
	dirty   bool
	err     error
}

func (s stubVersion) Version() (uint, bool, error) {
	return s.version, s.dirty, s.err
}

func TestReportVersion(t *testing.T) {
	tests := []struct {
		name    string
		stub    stubVersion
		wantLog string
		wantErr bool
	}{
		{name: "applied", stub: stubVersion{version: 20240101000000}, wantLog: "version=20240101000000"},
		{name: "rolled back", stub: stubVersion{err: migrate.ErrNilVersion}, wantLog: "no migrations applied"},
		{name: "read failure", stub: stubVersion{err: fmt.Errorf("read: %w", errors.New("connection reset"))}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := reportVersion(slog.New(slog.NewTextHandler(&buf, nil)), tt.stub)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantLog != "" && !strings.Contains(buf.String(), tt.wantLog) {
				t.Fatalf("expected log containing %q, got %q", tt.wantLog, buf.String())
			}
			if tt.wantErr && buf.Len() != 0 {
				t.Fatalf("expected nothing logged on error, got %q", buf.String())
			}
		})
	}
}
