package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// DefaultFileName returns the conventional extract name for a program,
// e.g. Zakat -> "program_zakat.csv".
func DefaultFileName(p model.Program) string {
	return "program_" + strings.ToLower(string(p)) + ".csv"
}

// ResolvePath returns the extract path for a program. Overrides map program
// names to file names or absolute paths; relative overrides live under dataDir.
func ResolvePath(dataDir string, p model.Program, overrides map[string]string) string {
	name := DefaultFileName(p)
	for k, v := range overrides {
		if strings.EqualFold(k, string(p)) && v != "" {
			name = v
			break
		}
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}

// ScanDir reports, for every program, where its extract is expected and
// whether it is present.
func ScanDir(dataDir string, overrides map[string]string) []ProgramFile {
	files := make([]ProgramFile, 0, len(model.Programs))
	for _, p := range model.Programs {
		pf := ProgramFile{Program: p, Path: ResolvePath(dataDir, p, overrides)}
		if info, err := os.Stat(pf.Path); err == nil && !info.IsDir() {
			pf.Exists = true
			pf.Size = info.Size()
		}
		files = append(files, pf)
	}
	return files
}

// CountPresent returns how many program extracts exist on disk.
func CountPresent(files []ProgramFile) int {
	n := 0
	for _, f := range files {
		if f.Exists {
			n++
		}
	}
	return n
}
