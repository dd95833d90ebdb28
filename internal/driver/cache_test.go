package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/diag"
	"vela/internal/driver"
	"vela/internal/lexer"
	"vela/internal/source"
)

func TestTokenCache_HitMatchesFreshScan(t *testing.T) {
	cache, err := driver.NewTokenCache(t.TempDir())
	require.NoError(t, err)
	src := []byte("func f(a: ^i32) -> i32 { return *a; } // tail\n")
	opts := driver.Options{Cache: cache, KeepTrivia: true}

	first, err := driver.TokenizeSource(context.Background(), "a.vl", src, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := driver.TokenizeSource(context.Background(), "b.vl", src, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Tokens, second.Tokens)
}

func TestTokenCache_ErrorRestored(t *testing.T) {
	cache, err := driver.NewTokenCache(t.TempDir())
	require.NoError(t, err)
	src := []byte("let s = 'a;")
	opts := driver.Options{Cache: cache}

	_, err = driver.TokenizeSource(context.Background(), "e.vl", src, opts)
	require.NoError(t, err)
	res, err := driver.TokenizeSource(context.Background(), "e.vl", src, opts)
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.NotNil(t, res.LexErr)
	assert.Equal(t, diag.LexUnterminatedChar, res.LexErr.Code)
	assert.Equal(t, uint32(8), res.LexErr.Offset)
	assert.Equal(t, "e.vl:1:9: unterminated or malformed character literal", res.LexErr.Error())
	require.Equal(t, 1, res.Bag.Len())
	assert.Equal(t, diag.LexUnterminatedChar, res.Bag.Items()[0].Code)
}

func TestTokenCache_KeyDependsOnOptions(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("k.vl", []byte("x")))
	plain := driver.KeyFor(f, lexer.Options{})
	trivia := driver.KeyFor(f, lexer.Options{KeepTrivia: true})
	limited := driver.KeyFor(f, lexer.Options{MaxTokenLength: 8})
	assert.NotEqual(t, plain, trivia)
	assert.NotEqual(t, plain, limited)
	assert.Equal(t, plain, driver.KeyFor(f, lexer.Options{}))
	assert.Len(t, plain.String(), 64)
}

func TestTokenCache_CorruptEntryIsWarning(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.NewTokenCache(dir)
	require.NoError(t, err)
	src := []byte("let a = 1;")

	fs := source.NewFileSet()
	key := driver.KeyFor(fs.Get(fs.AddVirtual("x.vl", src)), lexer.Options{})
	p := filepath.Join(dir, key.String()[:2], key.String()+".mp")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte{0xc1, 0x00}, 0o600))

	res, err := driver.TokenizeSource(context.Background(), "x.vl", src, driver.Options{Cache: cache})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, res.Tokens, 5)
	require.Equal(t, 1, res.Bag.Len())
	assert.Equal(t, diag.IOCacheError, res.Bag.Items()[0].Code)
	assert.Equal(t, diag.SevWarning, res.Bag.Items()[0].Severity)
}

func TestTokenCache_DropAll(t *testing.T) {
	cache, err := driver.NewTokenCache(filepath.Join(t.TempDir(), "tokens"))
	require.NoError(t, err)
	src := []byte("x")
	_, err = driver.TokenizeSource(context.Background(), "d.vl", src, driver.Options{Cache: cache})
	require.NoError(t, err)
	require.NoError(t, cache.DropAll())

	res, err := driver.TokenizeSource(context.Background(), "d.vl", src, driver.Options{Cache: cache})
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestOpenTokenCache_XDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	cache, err := driver.OpenTokenCache("vela")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "vela", "tokens"), cache.Dir())
}

func TestTokenCache_ErrorKeepsFixAndTrivia(t *testing.T) {
	cache, err := driver.NewTokenCache(t.TempDir())
	require.NoError(t, err)
	src := []byte("let s = 1; // tail\n'a")
	opts := driver.Options{Cache: cache, KeepTrivia: true}

	fresh, err := driver.TokenizeSource(context.Background(), "f.vl", src, opts)
	require.NoError(t, err)
	require.NotNil(t, fresh.LexErr)
	require.Len(t, fresh.LexErr.Leading, 3)

	cached, err := driver.TokenizeSource(context.Background(), "f.vl", src, opts)
	require.NoError(t, err)
	require.True(t, cached.Cached)
	require.NotNil(t, cached.LexErr)
	assert.Equal(t, fresh.LexErr.Leading, cached.LexErr.Leading)
	require.Equal(t, 1, cached.Bag.Len())
	assert.Equal(t, fresh.Bag.Items()[0].Fixes, cached.Bag.Items()[0].Fixes)
	require.Len(t, cached.Bag.Items()[0].Fixes, 1)
	assert.Equal(t, "'", cached.Bag.Items()[0].Fixes[0].Edits[0].NewText)
}
