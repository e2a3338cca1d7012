// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/landlock-lsm/go-landlock/landlock"

	"go.astrophena.name/radecbot/internal/cli"
	"go.astrophena.name/radecbot/internal/cli/envflag"
	"go.astrophena.name/radecbot/internal/compose"
	"go.astrophena.name/radecbot/internal/config"
	"go.astrophena.name/radecbot/internal/ephem"
	"go.astrophena.name/radecbot/internal/filelock"
	"go.astrophena.name/radecbot/internal/logger"
	"go.astrophena.name/radecbot/internal/restrict"
	"go.astrophena.name/radecbot/internal/sky"
	"go.astrophena.name/radecbot/internal/systemd"
	"go.astrophena.name/radecbot/internal/twitter"
)

var (
	errAlreadyRunning = errors.New("already running")
	errPostFailed     = errors.New("publishing failed")
)

func main() { cli.Main(new(app)) }

type app struct {
	// configuration
	configPath   *string
	cacheDir     *string
	ephemerisURL *string
	apiURL       *string
	dry          *bool

	// now acts as time.Now, but can be mocked for testing.
	now   func() time.Time
	httpc *http.Client
}

func (a *app) Flags(fs *flag.FlagSet, getenv func(string) string) {
	a.configPath = envflag.Value(fs, getenv, "config", "RADECBOT_CONFIG", config.DefaultPath(getenv), "Path to the credentials file.")
	a.cacheDir = envflag.Value(fs, getenv, "cache-dir", "RADECBOT_CACHE_DIR", ephem.DefaultDir(getenv), "Directory to keep the ephemeris in.")
	a.ephemerisURL = envflag.Value(fs, getenv, "ephemeris-url", "RADECBOT_EPHEMERIS_URL", ephem.DefaultURL, "URL to download the ephemeris from.")
	a.apiURL = envflag.Value(fs, getenv, "api-url", "RADECBOT_API_URL", twitter.DefaultAPIURL, "Base URL of the API to post to.")
	a.dry = envflag.Value(fs, getenv, "dry", "RADECBOT_DRY", false, "Print posts to stdout instead of publishing them.")
}

func (a *app) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", cli.ErrInvalidArgs, env.Args[0])
	}
	if a.now == nil {
		a.now = time.Now
	}
	log := logger.Get(ctx)
	if *a.dry {
		log.Level.Set(slog.LevelDebug)
	}

	if err := os.MkdirAll(*a.cacheDir, 0o755); err != nil {
		return err
	}
	lock, err := filelock.Acquire(filepath.Join(*a.cacheDir, "radecbot.lock"))
	if errors.Is(err, filelock.ErrAlreadyLocked) {
		return fmt.Errorf("%w: %v", errAlreadyRunning, err)
	}
	if err != nil {
		return err
	}
	defer lock.Release()

	restrict.DoUnlessTesting(ctx, a.sandbox()...)

	var poster twitter.Poster
	if !*a.dry {
		cfg, err := config.Load(*a.configPath, env.Environ())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w in %s or the environment", err, *a.configPath)
		}
		poster = twitter.New(twitter.Config{
			Credentials: cfg.Credentials(),
			APIURL:      *a.apiURL,
			HTTPClient:  a.httpc,
			Logger:      log.Logger,
		})
	}

	notify := func(status string) { systemd.Notify(env.Getenv, log.Logf(), systemd.Status(status)) }

	notify("loading ephemeris")
	loader := &ephem.Loader{
		Dir:        *a.cacheDir,
		URL:        *a.ephemerisURL,
		HTTPClient: a.httpc,
		Logger:     log.Logger,
	}
	k, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	now := a.now().UTC()
	log.Debug("observing", "time", now.Format(time.RFC3339), "ephemeris", loader.Path())
	posts, err := compose.Posts(sky.NewObserver(k), now)
	if err != nil {
		return fmt.Errorf("observing at %s: %w", now.Format(time.RFC3339), err)
	}

	if *a.dry {
		for i, post := range posts {
			if i > 0 {
				fmt.Fprintln(env.Stdout)
			}
			fmt.Fprintln(env.Stdout, post)
		}
		return nil
	}

	notify("posting")
	for i, post := range posts {
		tweet, err := poster.Post(ctx, post)
		if err != nil {
			return fmt.Errorf("%w at post %d of %d: %w", errPostFailed, i+1, len(posts), err)
		}
		log.Info("posted", "id", tweet.ID)
	}
	notify(fmt.Sprintf("posted %d posts at %s", len(posts), now.Format(time.RFC3339)))
	return nil
}

// sandbox returns the rules confining a run to its cache directory, its
// credentials and the hosts it talks to.
func (a *app) sandbox() []landlock.Rule {
	rules := []landlock.Rule{
		landlock.RWDirs(*a.cacheDir),
		landlock.ConnectTCP(53),
	}
	if dirs := existing("/etc/ssl", "/etc/pki", "/usr/share/ca-certificates"); len(dirs) > 0 {
		rules = append(rules, landlock.RODirs(dirs...))
	}
	if files := existing(*a.configPath, "/etc/resolv.conf", "/etc/hosts", "/etc/nsswitch.conf"); len(files) > 0 {
		rules = append(rules, landlock.ROFiles(files...))
	}
	for _, u := range []string{*a.ephemerisURL, *a.apiURL} {
		if port, ok := portOf(u); ok {
			rules = append(rules, landlock.ConnectTCP(port))
		}
	}
	return rules
}

func existing(paths ...string) []string {
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found
}

func portOf(rawURL string) (uint16, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		return uint16(n), err == nil
	}
	switch u.Scheme {
	case "https":
		return 443, true
	case "http":
		return 80, true
	}
	return 0, false
}
