// Package docs loads the predictor description file that accompanies the
// SHIPS diagnostics archive.
//
// The file is plain text, one "CODE: description" entry per line. Lines
// without a colon are prose and are skipped. When a code appears more than
// once the later entry wins, matching how the archive's own documentation
// revises entries in place.
package docs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Catalog maps parameter codes to their human-readable descriptions.
type Catalog struct {
	descs map[string]string
}

// Load reads a predictor description file from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predictor descriptions: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads predictor descriptions from r.
func Parse(r io.Reader) (*Catalog, error) {
	descs := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		code, desc, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		descs[code] = strings.TrimSpace(desc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read predictor descriptions: %w", err)
	}
	return &Catalog{descs: descs}, nil
}

// Describe returns the description for a parameter code.
func (c *Catalog) Describe(code string) (string, bool) {
	desc, ok := c.descs[code]
	return desc, ok
}

// Codes returns all known parameter codes in sorted order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.descs))
	for code := range c.descs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.descs)
}
