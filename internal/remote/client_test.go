package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/server"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

const testHeader = "Nama Penerima;KTP/SIM;Kota;Kat. Subprogram;Sumber Anggaran;Jumlah Bantuan;Durasi Total;Tahun;Cluster"

// newTestServer serves the aidboard API over a data dir holding a Zakat extract.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	rows := []string{
		testHeader,
		"A;01;Surabaya;Sembako;Zakat Mal;100;10;2022;0",
		"B;02;Surabaya;Sembako;Zakat Mal;300;30;2023;0",
		"C;03;Gresik;Modal;Infaq;900;5;2023;1",
	}
	path := filepath.Join(dir, source.DefaultFileName(model.Zakat))
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := pipeline.NewLoader(dir)
	loader.Logger = log.New(io.Discard)
	svc := server.New(server.Config{Loader: loader, Logger: loader.Logger})

	ts := httptest.NewServer(svc.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	if NewClient("  ") != nil {
		t.Error("empty addr should return nil")
	}
	if c := NewClient("127.0.0.1:8642"); c.base != "http://127.0.0.1:8642" {
		t.Errorf("base = %q, want http scheme added", c.base)
	}
	if c := NewClient("https://dash.example.org/"); c.base != "https://dash.example.org" {
		t.Errorf("base = %q, want trailing slash trimmed", c.base)
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	st, err := NewClient(ts.URL).Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.ProgramsPresent != 1 {
		t.Errorf("ProgramsPresent = %d, want 1", st.ProgramsPresent)
	}
}

func TestClusterSummary(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.URL)

	cs, err := c.ClusterSummary(context.Background(), model.Zakat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Program != model.Zakat || cs.Cluster != 0 {
		t.Errorf("program/cluster = %s/%d", cs.Program, cs.Cluster)
	}
	if got := cs.Summary.Value(profile.LabelMedianAmount); got != "Rp 200" {
		t.Errorf("median amount = %q, want Rp 200", got)
	}
	if cs.Detail.Records != 2 {
		t.Errorf("detail records = %d, want 2", cs.Detail.Records)
	}

	cs, err = c.ClusterSummary(context.Background(), model.Zakat, 0, 2022)
	if err != nil {
		t.Fatal(err)
	}
	if got := cs.Summary.Value(profile.LabelMedianAmount); got != "Rp 100" {
		t.Errorf("2022 median amount = %q, want Rp 100", got)
	}
}

func TestClusters(t *testing.T) {
	ts := newTestServer(t)
	list, err := NewClient(ts.URL).Clusters(context.Background(), model.Zakat, 2023)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Clusters) != 2 {
		t.Fatalf("clusters = %+v, want 2", list.Clusters)
	}
	if list.Clusters[0].Records != 1 || list.Clusters[1].Records != 1 {
		t.Errorf("2023 record counts = %+v", list.Clusters)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.URL)
	ctx := context.Background()

	_, err := c.ClusterSummary(ctx, model.Yatim, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing extract: err = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound || apiErr.Message == "" {
		t.Errorf("APIError = %+v", apiErr)
	}

	_, err = c.ClusterSummary(ctx, model.Program("Nope"), 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown program: err = %v, want ErrNotFound", err)
	}
}

func TestNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Status(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("error %q should carry the body text", err)
	}
}
