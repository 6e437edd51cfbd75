package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func main() {
	name := flag.String("name", "", "migration name, e.g. add_answer_index")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, nil))

	slug := migrationSlug(*name)
	if slug == "" {
		logger.Error("migration name is required")
		os.Exit(1)
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, slug)
	upPath := filepath.Join(*dir, base+".up.sql")
	downPath := filepath.Join(*dir, base+".down.sql")

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		logger.Error("create migrations dir", "error", err)
		os.Exit(1)
	}
	for _, f := range []struct{ path, header string }{
		{upPath, "-- " + slug + " (up)\n"},
		{downPath, "-- " + slug + " (down)\n"},
	} {
		if err := createFile(f.path, f.header); err != nil {
			logger.Error("create migration", "path", f.path, "error", err)
			os.Exit(1)
		}
	}
	logger.Info("created migration", "up", upPath, "down", downPath)
}

// migrationSlug lowercases the name and folds anything that is not a letter
// or digit into single underscores.
func migrationSlug(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(slug, "_")
}

func createFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
