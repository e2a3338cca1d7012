package radecbot

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"
)

func TestGofmt(t *testing.T) {
	var w bytes.Buffer

	gofmt := exec.Command("gofmt", "-l", "cmd", "internal")
	gofmt.Stdout = &w
	gofmt.Stderr = &w
	if err := gofmt.Run(); err != nil {
		t.Fatalf("gofmt failed: %v\n\n%v", err, w.String())
	}
	if files := strings.TrimSpace(w.String()); files != "" {
		t.Fatalf("run gofmt on these files:\n%v", files)
	}
}
