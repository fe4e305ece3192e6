// Package staging persists uploaded files to a private directory for the
// duration of a single request and guarantees their removal afterwards.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"llmgate/internal/common/fsutil"
)

const maxExtLen = 16

// Upload is an incoming file as received by the HTTP layer.
type Upload struct {
	// Filename is the client-supplied name; only its extension is kept.
	Filename string
	Body     io.Reader
}

// Stager writes uploads into dir, enforcing a size ceiling.
type Stager struct {
	dir      string
	maxBytes int64
	log      zerolog.Logger
	active   atomic.Int64
}

// New creates the staging directory if needed. maxBytes <= 0 disables the
// size ceiling.
func New(dir string, maxBytes int64, logger zerolog.Logger) (*Stager, error) {
	abs, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}
	s := &Stager{dir: abs, maxBytes: maxBytes, log: logger.With().Str("component", "staging").Logger()}
	n, err := fsutil.RemoveMatching(abs, isStagedName)
	if err != nil {
		return nil, fmt.Errorf("sweep staging dir: %w", err)
	}
	if n > 0 {
		s.log.Warn().Int("files", n).Str("dir", abs).Msg("removed uploads left by a previous run")
	}
	return s, nil
}

// isStagedName matches the names Stage generates, so a sweep never touches
// files it did not create.
func isStagedName(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	_, err := uuid.Parse(base)
	return err == nil && len(base) == 36
}

// Dir returns the absolute staging directory.
func (s *Stager) Dir() string { return s.dir }

// Active reports how many staged files have not been released yet.
func (s *Stager) Active() int64 { return s.active.Load() }

// Staged is a file on disk owned by one request.
type Staged struct {
	path    string
	size    int64
	once    sync.Once
	err     error
	release func()
}

// Path returns the on-disk location of the staged file.
func (f *Staged) Path() string { return f.path }

// Size returns the number of bytes written.
func (f *Staged) Size() int64 { return f.size }

// Release deletes the file. It is safe to call more than once; only the
// first call does any work and later calls return its result.
func (f *Staged) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.err = err
		}
		if f.release != nil {
			f.release()
		}
	})
	return f.err
}

// Stage copies up.Body into a fresh file. Any failure leaves nothing behind.
func (s *Stager) Stage(ctx context.Context, up Upload) (*Staged, error) {
	if up.Body == nil {
		stagedUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUpload("no file uploaded", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, uuid.NewString()+safeExt(up.Filename))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		stagedUploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	n, err := s.copy(ctx, out, up.Body)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close staged file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		stagedUploadsTotal.WithLabelValues("rejected").Inc()
		s.log.Debug().Err(err).Str("filename", up.Filename).Msg("upload rejected")
		return nil, err
	}

	s.active.Add(1)
	stagedFilesActive.Inc()
	stagedUploadsTotal.WithLabelValues("staged").Inc()
	s.log.Debug().Str("path", path).Int64("bytes", n).Msg("upload staged")
	return &Staged{
		path: path,
		size: n,
		release: func() {
			s.active.Add(-1)
			stagedFilesActive.Dec()
			s.log.Debug().Str("path", path).Msg("upload released")
		},
	}, nil
}

func (s *Stager) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	r := io.Reader(ctxReader{ctx: ctx, r: src})
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(dst, r)
	switch {
	case err != nil && ctx.Err() != nil:
		return n, ctx.Err()
	case err != nil:
		return n, ErrUpload("could not read upload", err)
	case n == 0:
		return n, ErrUpload("uploaded file is empty", nil)
	case s.maxBytes > 0 && n > s.maxBytes:
		return n, ErrUpload(fmt.Sprintf("uploaded file exceeds %d bytes", s.maxBytes), nil)
	}
	return n, nil
}

// Do stages up, runs fn with the staged path and releases the file on every
// exit path, including a panic in fn.
func (s *Stager) Do(ctx context.Context, up Upload, fn func(ctx context.Context, path string) error) error {
	f, err := s.Stage(ctx, up)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.Release(); rerr != nil {
			s.log.Warn().Err(rerr).Str("path", f.Path()).Msg("failed to remove staged file")
		}
	}()
	return fn(ctx, f.Path())
}

// ReadFile loads a staged file for forwarding. A missing, unreadable or empty
// file is reported as an upload error.
func ReadFile(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrUpload("no file path", nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrUpload("could not read uploaded file", err)
	}
	if len(b) == 0 {
		return nil, ErrUpload("uploaded file is empty", nil)
	}
	return b, nil
}

// safeExt keeps a short, lower-cased extension from name.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
