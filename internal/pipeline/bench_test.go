package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

func benchDir(b *testing.B, rows int) string {
	b.Helper()
	dir := b.TempDir()
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = fmt.Sprintf("Penerima %d;%07d;Kota %d;Sub %d;Dana %d;%d;%d;%d;%d",
			i, i, i%40, i%12, i%3, 100000+i*250, i%90, 2019+i%5, i%4)
	}
	for _, p := range model.Programs {
		writeProgram(b, dir, p, lines...)
	}
	return dir
}

func BenchmarkLoadAll(b *testing.B) {
	dir := benchDir(b, 5000)
	l := NewLoader(dir)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := l.LoadAll(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadAllCached(b *testing.B) {
	dir := benchDir(b, 5000)
	cache, err := NewMemoryCache(DefaultMemoryEntries)
	if err != nil {
		b.Fatal(err)
	}
	l := NewLoader(dir)
	l.Cache = cache

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := l.LoadAll(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := benchDir(b, 20000)
	pf := source.ProgramFile{Program: model.Zakat, Path: NewLoader(dir).Path(model.Zakat)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if result := source.ParseFile(pf, source.DefaultOptions()); result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}
