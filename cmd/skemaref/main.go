package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	skemaref "github.com/reoring/skemaref"
	"github.com/reoring/skemaref/compare"
	"github.com/reoring/skemaref/internal/jsondoc"
	"github.com/reoring/skemaref/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "compile":
		compileCmd(os.Args[2:])
	case "resolve":
		resolveCmd(os.Args[2:])
	case "sort":
		sortCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `skemaref CLI

Usage:
  skemaref compile -schema FILE [-id URI] [-ref REF1,REF2,...]
  skemaref resolve [-schema FILE] [-id URI] -ref REF
  skemaref sort -spec '{"a.b": 1, "c": -1}' -in FILE

Common flags (compile, resolve):
  -timeout 3s      per-fetch timeout
  -max-depth 10    remote documents one resolution may traverse
  -v               debug logging to stderr
  -metrics         print fetch metrics to stderr on exit

Schema files ending in .yaml or .yml are read as YAML; anything else as JSON.
Use "-" to read from stdin.`)
}

// resolverFlags are shared by the subcommands that build a Resolver.
type resolverFlags struct {
	schema   string
	id       string
	timeout  time.Duration
	maxDepth int
	verbose  bool
	metrics  bool
}

func (f *resolverFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.schema, "schema", "", "schema file to submit (JSON or YAML)")
	fs.StringVar(&f.id, "id", "", "id to submit the schema under (default: its own id)")
	fs.DurationVar(&f.timeout, "timeout", skemaref.DefaultTimeout, "per-fetch timeout")
	fs.IntVar(&f.maxDepth, "max-depth", skemaref.DefaultMaxDepth, "max remote documents per resolution")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logs")
	fs.BoolVar(&f.metrics, "metrics", false, "print metrics to stderr on exit")
}

// session is a Resolver with the schema file, if any, already submitted.
type session struct {
	r      *skemaref.Resolver
	root   string // id the schema file was submitted under
	reg    *prometheus.Registry
	logger *zap.Logger
}

func (f *resolverFlags) open(ctx context.Context) *session {
	logger, err := log.New(f.verbose)
	if err != nil {
		fatalf("logger: %v", err)
	}
	s := &session{logger: logger, root: f.id}
	opts := skemaref.Options{
		Timeout:  f.timeout,
		MaxDepth: f.maxDepth,
		Logger:   logger,
	}
	if f.metrics {
		s.reg = prometheus.NewRegistry()
		opts.Registerer = s.reg
	}
	s.r = skemaref.New(opts)
	if f.schema != "" {
		doc, err := loadDocument(f.schema)
		if err != nil {
			fatalf("reading %s: %v", f.schema, err)
		}
		if m, ok := doc.(map[string]any); ok && s.root == "" {
			s.root, _ = m["id"].(string)
		}
		if err := s.r.Submit(ctx, f.id, doc); err != nil {
			fatalf("submit %s: %v", f.schema, err)
		}
		logger.Debug("submitted", zap.String("file", f.schema), zap.Strings("documents", s.r.Documents()))
	}
	return s
}

func (s *session) close() {
	if s.reg != nil {
		if err := dumpMetrics(os.Stderr, s.reg); err != nil {
			fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
		}
	}
	_ = s.logger.Sync()
}

func compileCmd(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	var rf resolverFlags
	var refsCSV string
	rf.bind(fs)
	fs.StringVar(&refsCSV, "ref", "", "comma-separated references to compile (default: the schema root)")
	_ = fs.Parse(args)
	if rf.schema == "" {
		fs.Usage()
		os.Exit(2)
	}
	ctx := context.Background()
	s := rf.open(ctx)
	defer s.close()

	refs := splitCSV(refsCSV)
	if len(refs) == 0 {
		refs = []string{rootRef(s.root)}
	}
	out := make([]any, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			v, err := s.r.Compile(gctx, ref)
			if err != nil {
				return fmt.Errorf("compile %s: %w", ref, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.close()
		fatalf("%v", err)
	}
	if len(out) == 1 {
		writeJSON(os.Stdout, out[0])
		return
	}
	writeJSON(os.Stdout, out)
}

func resolveCmd(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	var rf resolverFlags
	var ref string
	rf.bind(fs)
	fs.StringVar(&ref, "ref", "", "reference to resolve")
	_ = fs.Parse(args)
	if ref == "" {
		fs.Usage()
		os.Exit(2)
	}
	ctx := context.Background()
	s := rf.open(ctx)
	defer s.close()

	node, err := s.r.Resolve(ctx, ref)
	if err != nil {
		s.close()
		fatalf("resolve %s: %v", ref, err)
	}
	writeJSON(os.Stdout, node)
}

func sortCmd(args []string) {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	var specJSON, in string
	fs.StringVar(&specJSON, "spec", "", `sort spec as a JSON object of "dotted.path": 1|-1, in priority order`)
	fs.StringVar(&in, "in", "-", "JSON or YAML file holding an array of documents")
	_ = fs.Parse(args)
	if specJSON == "" {
		fs.Usage()
		os.Exit(2)
	}
	spec, err := compare.ParseSortSpec([]byte(specJSON))
	if err != nil {
		fatalf("sort spec: %v", err)
	}
	v, err := loadDocument(in)
	if err != nil {
		fatalf("reading %s: %v", in, err)
	}
	docs, ok := v.([]any)
	if !ok {
		fatalf("%s: expected a JSON array of documents", in)
	}
	if err := compare.SortDocuments(docs, spec); err != nil {
		fatalf("sort: %v", err)
	}
	writeJSON(os.Stdout, docs)
}

// rootRef is the reference to the root of a schema submitted under id.
func rootRef(id string) string {
	if id == "" {
		return "#"
	}
	base, _, _ := strings.Cut(id, "#")
	return base + "#"
}

// loadDocument reads a schema or document file; "-" is stdin.
func loadDocument(path string) (any, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return jsondoc.DecodeYAML(b)
	default:
		return jsondoc.Decode(bytes.NewReader(b), jsondoc.Limits{
			MaxBytes: skemaref.DefaultMaxDocumentBytes,
			MaxDepth: skemaref.DefaultMaxDocumentDepth,
		})
	}
}

// writeJSON pretty-prints for terminals and emits one compact line otherwise.
func writeJSON(w *os.File, v any) {
	var (
		b   []byte
		err error
	)
	if isatty.IsTerminal(w.Fd()) {
		b, err = gojson.MarshalIndent(v, "", "  ")
	} else {
		b, err = gojson.Marshal(v)
	}
	if err != nil {
		fatalf("encoding output: %v", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		fatalf("writing output: %v", err)
	}
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%gs\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
