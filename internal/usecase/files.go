package usecase

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/imaging"
	"go-trades-backend/pkg/logger"
	"go-trades-backend/pkg/security"
	"go-trades-backend/pkg/security/antivirus"
	"go-trades-backend/pkg/storage"
)

// maxParallelUploads bounds concurrent PutObject calls per request.
const maxParallelUploads = 3

// fileStore validates and scans uploads, re-encodes images and hands them
// to storage.
type fileStore struct {
	storage domain.FileStorage
	guard   domain.UploadGuard
	scanner antivirus.Scanner
	now     func() time.Time
}

// newFileStore falls back to a no-op scanner when scanner is nil.
func newFileStore(s domain.FileStorage, guard domain.UploadGuard, scanner antivirus.Scanner) fileStore {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	return fileStore{storage: s, guard: guard, scanner: scanner, now: time.Now}
}

type storedFile struct {
	Key string
	URL string
}

// allow consults the per-user daily cap. Guard failures let the upload through.
func (s fileStore) allow(ctx context.Context, userID int64, files int) error {
	if s.guard == nil || files == 0 {
		return nil
	}
	ok, err := s.guard.Allow(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		logger.Log.Warn("upload guard unavailable", "user_id", userID, "error", err)
		return nil
	}
	if !ok {
		return apperror.TooManyRequests("Daily upload limit reached. Try again tomorrow.")
	}
	return nil
}

// save checks f against kind and stores it under prefix. field names the
// form field for validation errors.
func (s fileStore) save(ctx context.Context, prefix, field string, f domain.FileUpload, kind security.FileKind) (storedFile, error) {
	checked, err := security.ValidateFile(f.Filename, f.Data, kind)
	if err != nil {
		return storedFile{}, apperror.Validation(map[string][]string{field: {err.Error()}})
	}
	if err := s.scan(ctx, field, f); err != nil {
		return storedFile{}, err
	}

	data, ext, contentType := f.Data, checked.Extension, checked.ContentType
	if security.IsImageExtension(ext) {
		data, err = imaging.Compress(f.Data, imaging.DefaultMaxDimension, imaging.DefaultQuality)
		if err != nil {
			return storedFile{}, apperror.Validation(map[string][]string{field: {"image could not be processed"}})
		}
		ext, contentType = ".jpg", "image/jpeg"
	}

	key := storage.ObjectKey(prefix, ext, s.now())
	url, err := s.storage.Put(ctx, key, contentType, data)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return storedFile{}, err
		}
		return storedFile{}, apperror.Unavailable("Failed to store file", err)
	}
	return storedFile{Key: key, URL: url}, nil
}

// scan rejects infected files. A scan that could not complete also
// rejects the upload.
func (s fileStore) scan(ctx context.Context, field string, f domain.FileUpload) error {
	res := s.scanner.Scan(ctx, f.Filename, bytes.NewReader(f.Data))
	if !res.Infected {
		return nil
	}
	if res.Error != nil {
		logger.Log.Error("malware scan failed", "scanner", res.ScannerName, "file", f.Filename, "error", res.Error)
		return apperror.Unavailable("File could not be scanned. Please try again later.", res.Error)
	}
	logger.Log.Warn("upload rejected by malware scan", "scanner", res.ScannerName, "file", f.Filename, "threat", res.ThreatName)
	return apperror.Validation(map[string][]string{field: {"file failed the malware scan"}})
}

// saveAll stores files concurrently and keeps their order. If any upload
// fails the ones that succeeded are removed again.
func (s fileStore) saveAll(ctx context.Context, prefix, field string, files []domain.FileUpload, kind security.FileKind) ([]storedFile, error) {
	out := make([]storedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, f := range files {
		g.Go(func() error {
			stored, err := s.save(gctx, prefix, field, f, kind)
			if err != nil {
				return err
			}
			out[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range out {
			if f.Key != "" {
				s.remove(context.WithoutCancel(ctx), f.Key)
			}
		}
		return nil, err
	}
	return out, nil
}

// remove deletes a stored object; failures only leave an orphan behind.
func (s fileStore) remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Log.Warn("failed to delete stored object", "key", key, "error", err)
	}
}

type keyResolver interface {
	KeyFromURL(url string) (string, bool)
}

// removeURL deletes an object known only by its public URL. Backends that
// cannot map URLs back to keys are skipped.
func (s fileStore) removeURL(ctx context.Context, url string) {
	r, ok := s.storage.(keyResolver)
	if !ok {
		return
	}
	if key, ok := r.KeyFromURL(url); ok {
		s.remove(ctx, key)
	}
}
