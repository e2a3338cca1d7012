// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Radecbot posts the current right ascension and declination of the planets,
the Sun and the Moon, along with the phase of the Moon.

It is meant to be run periodically, for example by a systemd timer. Each run
publishes two posts: one with the planets and one with the Sun and the Moon.

# Usage

	$ radecbot [flags...]

On the first run the DE421 ephemeris (about 17 MB) is downloaded from NAIF
and cached in $XDG_CACHE_HOME/radecbot, or in $CACHE_DIRECTORY when the unit
sets CacheDirectory=. It covers the years 1899 to 2053 and is never
downloaded again.

# Configuration

Credentials are read from $XDG_CONFIG_HOME/radecbot/config.yaml:

	api_key: ...
	api_secret_key: ...
	bearer_token: ...
	access_token: ...
	access_token_secret: ...

Any of them can be overridden with an environment variable, such as
RADECBOT_ACCESS_TOKEN. Pass -dry to print the posts instead of publishing
them; no credentials are needed then.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/radecbot/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
