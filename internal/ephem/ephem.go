// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ephem keeps a local copy of a JPL planetary ephemeris, downloading
// it the first time it is needed.
package ephem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.astrophena.name/radecbot/internal/atomicio"
	"go.astrophena.name/radecbot/internal/filelock"
	"go.astrophena.name/radecbot/internal/logger"
	"go.astrophena.name/radecbot/internal/request"
	"go.astrophena.name/radecbot/internal/spk"
)

const (
	// DefaultName is the file name of the cached ephemeris.
	DefaultName = "de421.bsp"
	// DefaultURL is where the ephemeris is downloaded from.
	DefaultURL = "https://naif.jpl.nasa.gov/pub/naif/generic_kernels/spk/planets/" + DefaultName
)

// ErrDownloading is returned by [Loader.Load] when another process is
// downloading the ephemeris into the same directory.
var ErrDownloading = errors.New("ephemeris is being downloaded by another process")

// downloadClient has room for the ~17 MB kernel on slow links.
var downloadClient = &http.Client{Timeout: 5 * time.Minute}

// DefaultDir returns the directory the ephemeris is cached in:
// $CACHE_DIRECTORY when systemd runs the bot with CacheDirectory=, otherwise
// $XDG_CACHE_HOME/radecbot or $HOME/.cache/radecbot.
func DefaultDir(getenv func(string) string) string {
	// systemd separates several cache directories with colons.
	if dir, _, _ := strings.Cut(getenv("CACHE_DIRECTORY"), ":"); dir != "" {
		return dir
	}
	base := getenv("XDG_CACHE_HOME")
	if base == "" {
		base = filepath.Join(getenv("HOME"), ".cache")
	}
	return filepath.Join(base, "radecbot")
}

// Loader opens the cached ephemeris, fetching it when it is missing. The
// cache is never invalidated: once the file exists it is used as is.
type Loader struct {
	Dir        string       // DefaultDir(os.Getenv) if empty
	Name       string       // DefaultName if empty
	URL        string       // DefaultURL if empty
	HTTPClient *http.Client // used for the download
	Logger     *slog.Logger // taken from the context if nil
}

func (l *Loader) dir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return DefaultDir(os.Getenv)
}

// Path returns the location of the cached ephemeris.
func (l *Loader) Path() string {
	name := l.Name
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(l.dir(), name)
}

// Load opens the cached ephemeris, downloading it first if it is absent.
func (l *Loader) Load(ctx context.Context) (*spk.Kernel, error) {
	path := l.Path()
	if k, err := spk.Open(path); !errors.Is(err, fs.ErrNotExist) {
		return k, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	lock, err := filelock.Acquire(path + ".lock")
	if errors.Is(err, filelock.ErrAlreadyLocked) {
		return nil, fmt.Errorf("%w: %v", ErrDownloading, err)
	}
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	// It may have appeared while we were waiting for the lock.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := l.download(ctx, path); err != nil {
			return nil, err
		}
	}
	return spk.Open(path)
}

func (l *Loader) download(ctx context.Context, path string) error {
	url := l.URL
	if url == "" {
		url = DefaultURL
	}
	log := l.Logger
	if log == nil {
		log = logger.Get(ctx).Logger
	}
	httpc := l.HTTPClient
	if httpc == nil {
		httpc = downloadClient
	}

	log.Info("downloading ephemeris", "url", url, "path", path)
	start := time.Now()

	resp, err := request.Do(ctx, request.Params{
		Method:     http.MethodGet,
		URL:        url,
		HTTPClient: httpc,
	})
	if err != nil {
		return fmt.Errorf("downloading ephemeris: %w", err)
	}
	defer resp.Body.Close()

	n, err := atomicio.WriteFrom(path, resp.Body, 0o644, verify)
	if err != nil {
		return fmt.Errorf("downloading ephemeris from %q: %w", url, err)
	}
	log.Info("downloaded ephemeris", "bytes", n, "took", time.Since(start).Round(time.Millisecond))
	return nil
}

// verify rejects downloads that are not complete SPK kernels, such as error
// pages served with a 200 status.
func verify(f *os.File) error {
	head := make([]byte, 1024)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err := spk.Check(head[:n]); err != nil {
		return err
	}
	_, err = spk.New(f)
	return err
}
