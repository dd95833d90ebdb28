package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/diag"
	"vela/internal/driver"
	"vela/internal/source"
)

func TestListSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.vl", "")
	writeFile(t, dir, "a.vl", "")
	writeFile(t, dir, "sub/c.vl", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, ".hidden/d.vl", "")

	files, err := driver.ListSourceFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.vl"),
		filepath.Join(dir, "b.vl"),
		filepath.Join(dir, "sub", "c.vl"),
	}, files)

	txt, err := driver.ListSourceFiles(dir, []string{".txt"})
	require.NoError(t, err)
	assert.Len(t, txt, 1)
}

func TestTokenizeDir_OrderedResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vl", "let a = 1;")
	writeFile(t, dir, "b.vl", "let b = @;")
	writeFile(t, dir, "c.vl", "/* open")
	writeFile(t, dir, "d.vl", "func d() -> i8 { return 0; }")

	var done atomic.Int32
	sink := driver.SinkFunc(func(ev driver.Event) {
		if ev.Status == driver.StatusDone || ev.Status == driver.StatusError {
			done.Add(1)
		}
	})

	fs, results, err := driver.TokenizeDir(context.Background(), dir, driver.Options{Jobs: 2, Progress: sink})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, int32(4), done.Load())

	for i, name := range []string{"a.vl", "b.vl", "c.vl", "d.vl"} {
		assert.Equal(t, filepath.Join(dir, name), results[i].Path)
		assert.Equal(t, fs.Get(results[i].File.ID), results[i].File)
	}
	assert.Nil(t, results[0].LexErr)
	require.NotNil(t, results[1].LexErr)
	assert.Equal(t, diag.LexUnknownChar, results[1].LexErr.Code)
	require.NotNil(t, results[2].LexErr)
	assert.Equal(t, diag.LexUnterminatedBlockComment, results[2].LexErr.Code)
	assert.Len(t, results[3].Tokens, 11)
	assert.True(t, driver.HasLexErrors(results))

	merged := driver.MergeBags(results, 10)
	require.Equal(t, 2, merged.Len())
	assert.Less(t, merged.Items()[0].Primary.File, merged.Items()[1].Primary.File)
}

func TestTokenizeDir_Empty(t *testing.T) {
	fs, results, err := driver.TokenizeDir(context.Background(), t.TempDir(), driver.Options{})
	require.NoError(t, err)
	assert.NotNil(t, fs)
	assert.Empty(t, results)
	assert.False(t, driver.HasLexErrors(results))
}

func TestTokenizeDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vl", "a b c")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := driver.TokenizeDir(ctx, dir, driver.Options{})
	require.Error(t, err)
	assert.True(t, driver.IsCancelled(err))
}

func TestTokenizeDir_SampleTestdata(t *testing.T) {
	_, results, err := driver.TokenizeDir(context.Background(), filepath.Join("..", "..", "testdata"), driver.Options{})
	require.NoError(t, err)
	byName := map[string]driver.TokenizeDirResult{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	for _, ok := range []string{"sample.vl", "pointers.vl"} {
		require.Contains(t, byName, ok)
		assert.Nil(t, byName[ok].LexErr, ok)
		assert.NotEmpty(t, byName[ok].Tokens, ok)
	}
	for _, bad := range []string{"bad_char.vl", "unterminated_char.vl", "unterminated_comment.vl"} {
		require.Contains(t, byName, bad)
		assert.NotNil(t, byName[bad].LexErr, bad)
	}
}

func TestMergeBags_DropsRepeats(t *testing.T) {
	sp := source.Span{File: 1, Start: 3, End: 4}
	a := diag.NewBag(4)
	a.Add(diag.NewError(diag.LexUnknownChar, sp, "unexpected character '@'"))
	b := diag.NewBag(4)
	b.Add(diag.NewError(diag.LexUnknownChar, sp, "unexpected character '@'"))
	b.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{File: 2}, "token cache: corrupt"))

	merged := driver.MergeBags([]driver.TokenizeDirResult{
		{Path: "a.vl", TokenizeResult: &driver.TokenizeResult{Bag: a}},
		{Path: "b.vl", TokenizeResult: &driver.TokenizeResult{Bag: b}},
		{Path: "c.vl", LoadErr: os.ErrNotExist},
	}, 10)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, diag.LexUnknownChar, merged.Items()[0].Code)
	assert.Equal(t, diag.IOCacheError, merged.Items()[1].Code)
	assert.True(t, merged.HasWarnings())
}
