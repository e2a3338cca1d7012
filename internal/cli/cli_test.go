// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"go.astrophena.name/radecbot/internal/logger"
	"go.astrophena.name/radecbot/internal/testutil"
)

type flagApp struct {
	name string
	args []string
	log  bool
}

func (a *flagApp) Flags(fs *flag.FlagSet, getenv func(string) string) {
	fs.StringVar(&a.name, "name", getenv("NAME"), "Name to greet.")
}

func (a *flagApp) Run(ctx context.Context, env *Env) error {
	a.args = env.Args
	a.log = logger.Get(ctx) != nil
	fmt.Fprintf(env.Stdout, "hello, %s", a.name)
	return nil
}

func run(t *testing.T, app App, args []string, getenv func(string) string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = Run(context.Background(), app, &Env{
		Args:   args,
		Getenv: getenv,
		Stdout: &out,
		Stderr: &errOut,
	})
	return out.String(), errOut.String(), err
}

func TestRun(t *testing.T) {
	app := new(flagApp)
	stdout, _, err := run(t, app, []string{"-name", "world", "extra"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, stdout, "hello, world")
	testutil.AssertEqual(t, app.args, []string{"extra"})
	testutil.AssertEqual(t, app.log, true)

	app = new(flagApp)
	stdout, _, err = run(t, app, nil, func(name string) string {
		if name == "NAME" {
			return "env"
		}
		return ""
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, stdout, "hello, env")
}

func TestRunVersion(t *testing.T) {
	_, stderr, err := run(t, new(flagApp), []string{"-version"}, nil)
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("want %v, got %v", ErrExitVersion, err)
	}
	if isPrintableError(err) {
		t.Fatal("version exit must not be printed")
	}
	if !strings.Contains(stderr, runtime.Version()) {
		t.Fatalf("version output %q does not include the Go version", stderr)
	}
}

func TestRunBadFlag(t *testing.T) {
	_, stderr, err := run(t, new(flagApp), []string{"-nope"}, nil)
	if err == nil {
		t.Fatal("want error")
	}
	if isPrintableError(err) {
		t.Fatal("flag errors are already printed by the flag package")
	}
	if !strings.Contains(stderr, "Available flags:") {
		t.Fatalf("stderr %q has no usage", stderr)
	}
}

func TestAppFunc(t *testing.T) {
	var called bool
	_, _, err := run(t, AppFunc(func(ctx context.Context, env *Env) error {
		called = true
		return fmt.Errorf("%w: boom", ErrInvalidArgs)
	}), nil, nil)
	if !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("want %v, got %v", ErrInvalidArgs, err)
	}
	testutil.AssertEqual(t, called, true)
	testutil.AssertEqual(t, isPrintableError(err), true)
}

func TestParseDocComment(t *testing.T) {
	old := docSrc
	t.Cleanup(func() { docSrc = old })

	SetDocComment([]byte("// header\n\n/*\nRadecbot posts.\n\n# Usage\n\n\t$ radecbot\n*/\npackage main\n"))
	testutil.AssertEqual(t, parseDocComment(), "Radecbot posts.\n\n# Usage\n\n\t$ radecbot\n")
}
