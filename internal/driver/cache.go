package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/diag"
	"vela/internal/lexer"
	"vela/internal/source"
	"vela/internal/token"
)

// Current schema version - increment when CachedStream format or the pattern
// table changes.
const tokenCacheSchemaVersion uint16 = 2

// CacheKey identifies a scan result: file content plus the options that
// change the output.
type CacheKey [32]byte

func (k CacheKey) String() string { return hex.EncodeToString(k[:]) }

// TokenCache хранит результаты сканирования по хешу содержимого на диске.
// Thread-safe for concurrent access.
type TokenCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedTrivia struct {
	Kind  uint8  `msgpack:"k"`
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

type cachedToken struct {
	Kind    uint8          `msgpack:"k"`
	Start   uint32         `msgpack:"s"`
	End     uint32         `msgpack:"e"`
	Leading []cachedTrivia `msgpack:"l,omitempty"`
}

type cachedError struct {
	Code    uint16         `msgpack:"c"`
	Start   uint32         `msgpack:"s"`
	End     uint32         `msgpack:"e"`
	Char    rune           `msgpack:"r"`
	Msg     string         `msgpack:"m"`
	Leading []cachedTrivia `msgpack:"l,omitempty"` // trivia между последним токеном и ошибкой
}

// CachedStream is the on-disk payload. Texts are not stored: they are sliced
// from the file content on restore.
type CachedStream struct {
	Schema uint16        `msgpack:"v"`
	Tokens []cachedToken `msgpack:"t"`
	Err    *cachedError  `msgpack:"x,omitempty"`
}

// OpenTokenCache opens the cache under $XDG_CACHE_HOME/<app>/tokens.
func OpenTokenCache(app string) (*TokenCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewTokenCache(filepath.Join(base, app, "tokens"))
}

// NewTokenCache opens a cache rooted at dir, creating it if needed.
func NewTokenCache(dir string) (*TokenCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &TokenCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *TokenCache) Dir() string { return c.dir }

// KeyFor derives the cache key for scanning file with opts.
func KeyFor(file *source.File, opts lexer.Options) CacheKey {
	var hdr [11]byte
	binary.LittleEndian.PutUint16(hdr[0:], tokenCacheSchemaVersion)
	if opts.KeepTrivia {
		hdr[2] = 1
	}
	binary.LittleEndian.PutUint64(hdr[3:], uint64(max(opts.MaxTokenLength, 0))) //nolint:gosec // non-negative
	h := sha256.New()
	h.Write(hdr[:])
	h.Write(file.Hash[:])
	var k CacheKey
	h.Sum(k[:0])
	return k
}

func (c *TokenCache) pathFor(key CacheKey) string {
	hexKey := key.String()
	// подкаталоги по первому байту, чтобы не держать всё в одном каталоге
	return filepath.Join(c.dir, hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache. The write is atomic.
func (c *TokenCache) Put(key CacheKey, payload *CachedStream) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = tokenCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or a payload of another schema is a
// miss, not an error.
func (c *TokenCache) Get(key CacheKey, out *CachedStream) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close() //nolint:errcheck

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	if out.Schema != tokenCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached entry.
func (c *TokenCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// encodeStream converts a scan result into the cache payload.
func encodeStream(tokens []token.Token, lexErr *lexer.LexicalError) *CachedStream {
	out := &CachedStream{Tokens: make([]cachedToken, len(tokens))}
	for i, tok := range tokens {
		out.Tokens[i] = cachedToken{
			Kind:    uint8(tok.Kind),
			Start:   tok.Span.Start,
			End:     tok.Span.End,
			Leading: encodeTrivia(tok.Leading),
		}
	}
	if lexErr != nil {
		out.Err = &cachedError{
			Code:    uint16(lexErr.Code),
			Start:   lexErr.Span.Start,
			End:     lexErr.Span.End,
			Char:    lexErr.Char,
			Msg:     lexErr.Msg,
			Leading: encodeTrivia(lexErr.Leading),
		}
	}
	return out
}

func encodeTrivia(trivia []token.Trivia) []cachedTrivia {
	var out []cachedTrivia
	for _, tr := range trivia {
		out = append(out, cachedTrivia{Kind: uint8(tr.Kind), Start: tr.Span.Start, End: tr.Span.End})
	}
	return out
}

// decodeStream restores tokens against file. It fails on spans that do not
// fit the content, which means the payload is corrupt.
func decodeStream(file *source.File, cs *CachedStream) ([]token.Token, *lexer.LexicalError, error) {
	size := file.Len()
	span := func(start, end uint32) (source.Span, error) {
		if start > end || end > size {
			return source.Span{}, fmt.Errorf("cached span %d..%d outside %d bytes", start, end, size)
		}
		return source.Span{File: file.ID, Start: start, End: end}, nil
	}

	decodeTrivia := func(in []cachedTrivia) ([]token.Trivia, error) {
		var out []token.Trivia
		for _, tr := range in {
			tsp, err := span(tr.Start, tr.End)
			if err != nil {
				return nil, err
			}
			out = append(out, token.Trivia{Kind: token.Kind(tr.Kind), Span: tsp, Text: file.Text(tsp)})
		}
		return out, nil
	}

	tokens := make([]token.Token, len(cs.Tokens))
	for i, ct := range cs.Tokens {
		sp, err := span(ct.Start, ct.End)
		if err != nil {
			return nil, nil, err
		}
		leading, err := decodeTrivia(ct.Leading)
		if err != nil {
			return nil, nil, err
		}
		tokens[i] = token.Token{Kind: token.Kind(ct.Kind), Span: sp, Text: file.Text(sp), Leading: leading}
	}

	if cs.Err == nil {
		return tokens, nil, nil
	}
	sp, err := span(cs.Err.Start, cs.Err.End)
	if err != nil {
		return nil, nil, err
	}
	leading, err := decodeTrivia(cs.Err.Leading)
	if err != nil {
		return nil, nil, err
	}
	return tokens, &lexer.LexicalError{
		Code:    diag.Code(cs.Err.Code),
		Path:    file.Path,
		Offset:  sp.Start,
		Pos:     file.LineCol(sp.Start),
		Char:    cs.Err.Char,
		Span:    sp,
		Msg:     cs.Err.Msg,
		Leading: leading,
	}, nil
}
