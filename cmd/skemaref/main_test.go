package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
)

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" #/a, ,http://h/s#/b,")
	if diff := cmp.Diff([]string{"#/a", "http://h/s#/b"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRootRef(t *testing.T) {
	for id, want := range map[string]string{
		"":                      "#",
		"http://h/s":            "http://h/s#",
		"http://h/s#":           "http://h/s#",
		"mem.json#/definitions": "mem.json#",
	} {
		if got := rootRef(id); got != want {
			t.Errorf("rootRef(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "s.yaml")
	js := filepath.Join(dir, "s.json")
	if err := os.WriteFile(yml, []byte("definitions:\n  a:\n    type: string\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(js, []byte(`{"definitions": {"a": {"type": "string"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"definitions": map[string]any{"a": map[string]any{"type": "string"}}}
	for _, p := range []string{yml, js} {
		got, err := loadDocument(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", p, diff)
		}
	}

	dup := filepath.Join(dir, "dup.json")
	if err := os.WriteFile(dup, []byte(`{"a": 1, "a": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadDocument(dup); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestDumpMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "x_total", Help: "x"}, []string{"outcome"})
	reg.MustRegister(c)
	c.WithLabelValues("ok").Add(2)

	var buf bytes.Buffer
	if err := dumpMetrics(&buf, reg); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != `x_total{outcome="ok"} 2` {
		t.Fatalf("got %q", got)
	}
}
