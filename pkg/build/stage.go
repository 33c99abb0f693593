package build

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// stager moves files around through afs so staging targets can later be remote URLs.
type stager struct {
	fs afs.Service
}

func newStager() *stager {
	return &stager{fs: afs.New()}
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // windows drive letter
	}
	return file.Scheme + "://localhost" + p, nil
}

func (s *stager) exists(ctx context.Context, path string) (bool, error) {
	u, err := fileURL(path)
	if err != nil {
		return false, err
	}
	return s.fs.Exists(ctx, u)
}

func (s *stager) ensureDir(ctx context.Context, dir string) error {
	ok, err := s.exists(ctx, dir)
	if err != nil || ok {
		return err
	}
	u, err := fileURL(dir)
	if err != nil {
		return err
	}
	return s.fs.Create(ctx, u, file.DefaultDirOsMode, true)
}

// remove deletes dir recursively. A missing dir is not an error.
func (s *stager) remove(ctx context.Context, dir string) error {
	ok, err := s.exists(ctx, dir)
	if err != nil || !ok {
		return err
	}
	u, err := fileURL(dir)
	if err != nil {
		return err
	}
	return s.fs.Delete(ctx, u)
}

// copyExecutable copies src to dst with an executable mode, creating dst's parent.
func (s *stager) copyExecutable(ctx context.Context, src, dst string) error {
	srcURL, err := fileURL(src)
	if err != nil {
		return err
	}
	dstURL, err := fileURL(dst)
	if err != nil {
		return err
	}
	if err := s.ensureDir(ctx, filepath.Dir(dst)); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	data, err := s.fs.DownloadWithURL(ctx, srcURL)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := s.fs.Upload(ctx, dstURL, 0o755, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
