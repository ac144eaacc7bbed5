package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/edgard/autoreply/internal/session"
)

// CannedGenerator answers with a random line of a plain text file, one message
// per line. The file is read on every call so edits apply without a restart.
type CannedGenerator struct {
	path        string
	placeholder string
	log         *slog.Logger
	intN        func(n int) int
}

// NewCannedGenerator creates a CannedGenerator reading path. placeholder is
// returned whenever the file is missing, unreadable or has no lines.
func NewCannedGenerator(path, placeholder string, log *slog.Logger) *CannedGenerator {
	if log == nil {
		log = slog.Default()
	}
	return &CannedGenerator{
		path:        path,
		placeholder: placeholder,
		log:         log.With("component", "canned_generator"),
		intN:        rand.IntN,
	}
}

// Generate ignores the triggering text and language and never touches the
// session's last reply.
func (g *CannedGenerator) Generate(ctx context.Context, _ *session.State, _, _ string) (string, error) {
	lines, err := readLines(g.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.log.WarnContext(ctx, "Canned message file not found", "path", g.path)
		} else {
			g.log.ErrorContext(ctx, "Failed to read canned message file", "path", g.path, "error", err)
		}
		return g.placeholder, nil
	}
	if len(lines) == 0 {
		g.log.WarnContext(ctx, "Canned message file is empty", "path", g.path)
		return g.placeholder, nil
	}
	return lines[g.intN(len(lines))], nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return lines, nil
}
