// Package fetch downloads the raw SHIPS diagnostics archives from CIRA
// and assembles them into a single local file.
//
// Each basin is published as its own developmental-data file. The
// downloader retrieves the requested basins concurrently, then
// concatenates them in basin order so repeated runs produce the same file.
// An existing destination file is left untouched; a failed run removes any
// partial output.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the CIRA archive root for SHIPS developmental data.
const DefaultBaseURL = "https://rammb-data.cira.colostate.edu/ships/data"

// maxConcurrent bounds simultaneous downloads against the archive host.
const maxConcurrent = 3

// basinFiles maps basin selectors to the archive file for each basin.
// Order in basinOrder fixes the concatenation order of the output.
var basinFiles = map[string]string{
	"AL": "AL/lsdiaga_1982_2019_sat_ts.dat",
	"EP": "EP/lsdiage_1982_2019_sat_ts.dat",
	"CP": "CP/lsdiagc_1982_2019_sat_ts.dat",
	"WP": "WP/lsdiagw_1990_2017.dat",
	"IO": "IO/lsdiagi_1990_2017.dat",
	"SH": "SH/lsdiags_1998_2017.dat",
}

var basinOrder = []string{"AL", "EP", "CP", "WP", "IO", "SH"}

// Downloader retrieves basin archives over HTTP.
type Downloader struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewDownloader creates a Downloader against baseURL. An empty baseURL
// means DefaultBaseURL; a nil logger discards output.
func NewDownloader(baseURL string, logger *slog.Logger) *Downloader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{
		client:  &http.Client{Timeout: 10 * time.Minute},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Fetch downloads the named basins and concatenates them into dest. If
// dest already exists it is kept as-is and Fetch returns immediately.
// Basins download concurrently; the output is always assembled in the
// fixed basin order regardless of completion order.
func (d *Downloader) Fetch(ctx context.Context, dest string, basins []string) error {
	if _, err := os.Stat(dest); err == nil {
		d.logger.Info("raw diagnostics file already present, skipping download", "path", dest)
		return nil
	}
	if len(basins) == 0 {
		basins = basinOrder
	}

	ordered := make([]string, 0, len(basins))
	for _, b := range basinOrder {
		for _, want := range basins {
			if b == want {
				ordered = append(ordered, b)
				break
			}
		}
	}
	if len(ordered) != len(basins) {
		return fmt.Errorf("unrecognized basin in %v", basins)
	}

	parts := make([]string, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, basin := range ordered {
		part := fmt.Sprintf("%s.%s.part", dest, basin)
		parts[i] = part
		g.Go(func() error {
			return d.downloadPart(gctx, basin, part)
		})
	}
	err := g.Wait()
	if err == nil {
		err = assemble(dest, parts)
	}
	for _, part := range parts {
		_ = os.Remove(part)
	}
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	d.logger.Info("downloaded raw diagnostics", "path", dest, "basins", ordered)
	return nil
}

func (d *Downloader) downloadPart(ctx context.Context, basin, part string) error {
	url := d.baseURL + "/" + basinFiles[basin]
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	d.logger.Info("downloading basin archive", "basin", basin, "url", url)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", basin, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", basin, resp.Status)
	}

	f, err := os.Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("download %s: %w", basin, err)
	}
	return f.Close()
}

// assemble concatenates part files into dest. The archive files end with a
// newline already, so parts join cleanly.
func assemble(dest string, parts []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	for _, part := range parts {
		in, err := os.Open(part)
		if err != nil {
			_ = out.Close()
			return err
		}
		_, err = io.Copy(out, in)
		_ = in.Close()
		if err != nil {
			_ = out.Close()
			return err
		}
	}
	return out.Close()
}
