package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if got := c.DisplayName(model.Dakwah, 0); got != "Cluster 0: Dakwah Umum dengan Proses Lambat" {
		t.Errorf("Dakwah/0 = %q", got)
	}
	if got := c.DisplayName(model.Masjid, 3); got != "Cluster 3: Bantuan Infrastruktur Lokal dengan Proses Cepat" {
		t.Errorf("Masjid/3 = %q", got)
	}
	if got := c.DisplayName(model.Dakwah, 7); got != "Cluster 7" {
		t.Errorf("unknown id = %q, want fallback", got)
	}

	for _, p := range model.Programs {
		if len(c.Clusters(p)) == 0 {
			t.Errorf("%s has no clusters", p)
		}
		if e := c.Explanation(p); !strings.HasPrefix(e, "Penamaan cluster") {
			t.Errorf("%s explanation = %q", p, e)
		}
	}

	wantCounts := map[model.Program]int{
		model.Dakwah: 2, model.Kemanusiaan: 2, model.Masjid: 4,
		model.Pendidikan: 4, model.Zakat: 3, model.Yatim: 3,
	}
	for p, n := range wantCounts {
		labels := c.Clusters(p)
		if len(labels) != n {
			t.Errorf("%s clusters = %d, want %d", p, len(labels), n)
		}
		for i, l := range labels {
			if l.ID != i {
				t.Errorf("%s clusters not sorted by id: %+v", p, labels)
				break
			}
		}
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()
	name := c.DisplayName(model.Yatim, 2)
	id, ok := c.Lookup(model.Yatim, name)
	if !ok || id != 2 {
		t.Errorf("Lookup(%q) = %d, %v", name, id, ok)
	}
	if _, ok := c.Lookup(model.Yatim, "nope"); ok {
		t.Error("Lookup of unknown name should fail")
	}
}

func TestCatalog_NilFallbacks(t *testing.T) {
	var c *Catalog
	if got := c.DisplayName(model.Zakat, 1); got != "Cluster 1" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := c.Explanation(model.Zakat); got != NoExplanation {
		t.Errorf("Explanation = %q", got)
	}
	labels := c.Labels(model.Zakat, []int{0, 4})
	if labels[1].Name != "Cluster 4" {
		t.Errorf("Labels = %+v", labels)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := `
[programs.zakat]
explanation = "Custom note."
[programs.zakat.clusters]
1 = "Fast lane"
0 = "Slow lane"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := c.DisplayName(model.Zakat, 1); got != "Fast lane" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := c.Clusters(model.Zakat); got[0].Name != "Slow lane" {
		t.Errorf("Clusters = %+v", got)
	}
	if got := c.Explanation(model.Zakat); got != "Custom note." {
		t.Errorf("Explanation = %q", got)
	}
	if got := c.Explanation(model.Dakwah); got != NoExplanation {
		t.Errorf("absent program explanation = %q", got)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown program": "[programs.Wakaf.clusters]\n0 = \"x\"\n",
		"bad id":          "[programs.Zakat.clusters]\nfirst = \"x\"\n",
		"negative id":     "[programs.Zakat.clusters]\n-1 = \"x\"\n",
		"bad toml":        "[programs\n",
	}
	for name, content := range tests {
		if _, err := ParseCatalog([]byte(content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadCatalog_EmptyPathIsDefault(t *testing.T) {
	c, err := LoadCatalog("")
	if err != nil || c != DefaultCatalog() {
		t.Errorf("LoadCatalog(\"\") = %p, %v", c, err)
	}
}
