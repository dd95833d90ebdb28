package driver

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vela/internal/diag"
	"vela/internal/observ"
	"vela/internal/source"
	"vela/internal/trace"
)

// DefaultExtensions lists the source file extensions scanned in a directory.
var DefaultExtensions = []string{".vl"}

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path string // путь как найден при обходе
	*TokenizeResult
	LoadErr error
}

// ListSourceFiles возвращает отсортированный список файлов с нужными расширениями.
// Hidden directories (".git", ".cache") are skipped.
func ListSourceFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

// TokenizeDir токенизирует все исходники в директории параллельно.
// Files are loaded up front into one FileSet so that FileIDs follow the
// sorted order; results come back in that order too. A file that fails to
// load has LoadErr set and an empty Bag.
func TokenizeDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	files, err := ListSourceFiles(dir, opts.Extensions)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "lex-dir")
	defer span.WithExtra("files", strconv.Itoa(len(files))).End("")

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	results := make([]TokenizeDirResult, len(files))
	fileIDs := make([]source.FileID, len(files))
	loadTimes := make([]*observ.Timer, len(files))
	for i, path := range files {
		timer := observ.NewTimer()
		done := timer.Track("load")
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			done("failed")
			results[i] = TokenizeDirResult{Path: path, LoadErr: loadErr}
			continue
		}
		done("")
		fileIDs[i] = id
		loadTimes[i] = timer
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты по индексу: мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr := results[i].LoadErr; loadErr != nil {
				// у незагруженного файла нет FileID, поэтому диагностику печатает вызывающий
				results[i].TokenizeResult = &TokenizeResult{FileSet: fileSet, Bag: diag.NewBag(opts.maxDiagnostics())}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}
			res, err := tokenizeFile(gctx, fileSet, fileSet.Get(fileIDs[i]), opts, loadTimes[i])
			results[i] = TokenizeDirResult{Path: path, TokenizeResult: res}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// HasLexErrors reports whether any result failed to load or to scan.
func HasLexErrors(results []TokenizeDirResult) bool {
	for _, r := range results {
		if r.LoadErr != nil || (r.TokenizeResult != nil && r.LexErr != nil) {
			return true
		}
	}
	return false
}

// MergeBags collects all per-file bags into one, sorted and without
// repeated code+span pairs.
func MergeBags(results []TokenizeDirResult, limit int) *diag.Bag {
	out := diag.NewBag(limit)
	for _, r := range results {
		if r.TokenizeResult == nil || r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			out.Add(d)
		}
	}
	out.Sort()
	out.Dedup()
	return out
}

// IsCancelled reports whether err came from context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
