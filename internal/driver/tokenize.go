package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vela/internal/diag"
	"vela/internal/lexer"
	"vela/internal/observ"
	"vela/internal/source"
	"vela/internal/token"
	"vela/internal/trace"
)

// DefaultMaxDiagnostics is used when Options.MaxDiagnostics is not positive.
const DefaultMaxDiagnostics = 100

// Options configures Tokenize, TokenizeSource and TokenizeDir.
type Options struct {
	MaxDiagnostics int
	KeepTrivia     bool
	MaxTokenLength int
	Jobs           int      // только TokenizeDir; 0 = GOMAXPROCS
	Extensions     []string // только TokenizeDir; пусто = DefaultExtensions
	Cache          *TokenCache
	Progress       ProgressSink
	// Timings adds an ObsTimings diagnostic with per-file phases to each bag.
	Timings bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return DefaultMaxDiagnostics
}

func (o Options) lexerOptions(r diag.Reporter) lexer.Options {
	return lexer.Options{
		Reporter:       r,
		KeepTrivia:     o.KeepTrivia,
		MaxTokenLength: o.MaxTokenLength,
	}
}

// TokenizeResult holds the outcome for one file. Tokens are those scanned
// before LexErr, if any; LexErr is also recorded in Bag.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
	LexErr  *lexer.LexicalError
	Cached  bool
	Timing  *observ.Report
}

// Tokenize loads path and scans it. Only I/O and cancellation errors are
// returned; a lexical error is reported through the result.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	timer := observ.NewTimer()
	loadDone := timer.Track("load")
	fileID, err := fs.Load(path)
	if err != nil {
		loadDone("failed")
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	loadDone("")
	return tokenizeFile(ctx, fs, fs.Get(fileID), opts, timer)
}

// TokenizeSource scans an in-memory buffer registered under name (stdin,
// the embedded sample, the REPL).
func TokenizeSource(ctx context.Context, name string, src []byte, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	return tokenizeFile(ctx, fs, fs.Get(fs.AddVirtual(name, src)), opts, observ.NewTimer())
}

func tokenizeFile(ctx context.Context, fs *source.FileSet, file *source.File, opts Options, timer *observ.Timer) (*TokenizeResult, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeFile, "file:"+file.Path)
	started := time.Now()
	res := &TokenizeResult{
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.maxDiagnostics()),
	}
	defer func() {
		span.WithExtra("tokens", strconv.Itoa(len(res.Tokens))).
			WithExtra("cached", strconv.FormatBool(res.Cached)).
			End(errDetail(res.LexErr))
	}()

	emit(opts.Progress, Event{File: file.Path, Stage: StageLex, Status: StatusWorking})
	// кеш и лексер пишут в один Bag
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	key := KeyFor(file, opts.lexerOptions(nil))
	if opts.Cache != nil {
		hit, err := restoreCached(res, opts.Cache, key, reporter, timer)
		if err != nil {
			// битый кеш не должен ломать сканирование
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: file.ID}, "token cache: "+err.Error()).Emit()
			trace.Error(trace.FromContext(ctx), trace.ScopeFile, "cache", trace.CurrentSpan(ctx), err.Error())
		}
		if hit {
			finish(ctx, res, opts, timer, started)
			return res, nil
		}
	}

	lexDone := timer.Track("lex")
	toks, err := lexer.TokenizeContext(ctx, file, opts.lexerOptions(reporter))
	res.Tokens = toks
	switch {
	case err == nil:
		lexDone(strconv.Itoa(len(toks)) + " tokens")
	case errors.Is(err, lexer.ErrCancelled):
		lexDone("cancelled")
		emit(opts.Progress, Event{File: file.Path, Stage: StageLex, Status: StatusError, Err: err})
		return res, err
	default:
		lexDone("error")
		le, ok := lexer.AsLexical(err)
		if !ok {
			return res, err
		}
		res.LexErr = le
		trace.Error(trace.FromContext(ctx), trace.ScopeFile, "lex", trace.CurrentSpan(ctx), le.Error())
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, encodeStream(res.Tokens, res.LexErr)); err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: file.ID}, "token cache: "+err.Error()).Emit()
		}
	}
	finish(ctx, res, opts, timer, started)
	return res, nil
}

func restoreCached(res *TokenizeResult, cache *TokenCache, key CacheKey, reporter diag.Reporter, timer *observ.Timer) (bool, error) {
	done := timer.Track("cache")
	var cs CachedStream
	hit, err := cache.Get(key, &cs)
	if err != nil || !hit {
		done("miss")
		return false, err
	}
	toks, lexErr, err := decodeStream(res.File, &cs)
	if err != nil {
		done("corrupt")
		return false, err
	}
	done("hit")
	res.Tokens = toks
	res.LexErr = lexErr
	res.Cached = true
	// в кеше нет Bag, восстанавливаем диагностику
	lexErr.Report(reporter, res.File)
	return true, nil
}

func finish(ctx context.Context, res *TokenizeResult, opts Options, timer *observ.Timer, started time.Time) {
	report := timer.Report()
	res.Timing = &report
	if opts.Timings {
		appendTimingDiagnostic(res.Bag, res.File, report)
	}
	status := StatusDone
	if res.LexErr != nil {
		status = StatusError
	}
	var evErr error
	if res.LexErr != nil {
		evErr = res.LexErr
	}
	emit(opts.Progress, Event{
		File:    res.File.Path,
		Stage:   StageLex,
		Status:  status,
		Tokens:  len(res.Tokens),
		Cached:  res.Cached,
		Err:     evErr,
		Elapsed: time.Since(started),
	})
	trace.Point(trace.FromContext(ctx), trace.ScopeToken, "tokens", trace.CurrentSpan(ctx), strconv.Itoa(len(res.Tokens)))
}

func errDetail(le *lexer.LexicalError) string {
	if le == nil {
		return ""
	}
	return le.Code.ID()
}
