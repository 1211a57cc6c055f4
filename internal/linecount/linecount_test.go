package linecount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/linestat/internal/linecount"
)

func TestClassify_Go(t *testing.T) {
	t.Parallel()

	src := []byte("// Package demo.\npackage demo\n\n/*\nblock\n*/\nfunc F() int { return 1 } // trailing\n")

	report, ok := linecount.Classify("demo.go", src)
	require.True(t, ok)
	assert.Equal(t, "Go", report.Language)

	stats := report.Summarize()
	assert.Equal(t, uint64(2), stats.Code)
	assert.Equal(t, uint64(4), stats.Comments)
	assert.Equal(t, uint64(1), stats.Blanks)
}

func TestClassify_Python(t *testing.T) {
	t.Parallel()

	src := []byte("# comment\nx = 1\n\ny = 2\n")

	report, ok := linecount.Classify("stats.py", src)
	require.True(t, ok)
	assert.Equal(t, "Python", report.Language)

	stats := report.Summarize()
	assert.Equal(t, uint64(2), stats.Code)
	assert.Equal(t, uint64(1), stats.Comments)
	assert.Equal(t, uint64(1), stats.Blanks)
}

func TestClassify_PythonDocstringSingleLine(t *testing.T) {
	t.Parallel()

	src := []byte("\"\"\"doc\"\"\"\nx = 1\n")

	report, ok := linecount.Classify("mod.py", src)
	require.True(t, ok)

	stats := report.Summarize()
	assert.Equal(t, uint64(1), stats.Code)
	assert.Equal(t, uint64(1), stats.Comments)
}

func TestClassify_Binary(t *testing.T) {
	t.Parallel()

	_, ok := linecount.Classify("blob.bin", []byte{0x00, 0x01, 0x02})
	assert.False(t, ok)
}

func TestClassify_UnknownLanguage(t *testing.T) {
	t.Parallel()

	_, ok := linecount.Classify("data.xyzqwe", []byte("just words\n"))
	assert.False(t, ok)
}

func TestClassify_MarkdownFlattensFences(t *testing.T) {
	t.Parallel()

	src := []byte("# Title\n\n```\ncode line\n\ncode line\n```\nprose\n")

	report, ok := linecount.Classify("README.md", src)
	require.True(t, ok)
	assert.Equal(t, "Markdown", report.Language)
	require.Len(t, report.Blocks, 1)
	assert.Equal(t, uint64(2), report.Blocks[0].Code)
	assert.Equal(t, uint64(1), report.Blocks[0].Blanks)

	stats := report.Summarize()
	// Two fence markers + title + prose are comments; nested code folded in.
	assert.Equal(t, uint64(4), stats.Comments)
	assert.Equal(t, uint64(2), stats.Code)
	assert.Equal(t, uint64(2), stats.Blanks)
}

func TestStats_Add(t *testing.T) {
	t.Parallel()

	total := linecount.Stats{Code: 1, Comments: 2, Blanks: 3}
	total.Add(linecount.Stats{Code: 10, Comments: 20, Blanks: 30})

	assert.Equal(t, linecount.Stats{Code: 11, Comments: 22, Blanks: 33}, total)
}

func TestKnownLanguages(t *testing.T) {
	t.Parallel()

	languages := linecount.KnownLanguages()
	require.NotEmpty(t, languages)
	assert.Contains(t, languages, "Go")
	assert.Contains(t, languages, "Python")
	assert.IsIncreasing(t, languages)
}
