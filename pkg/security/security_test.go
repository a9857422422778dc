package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
)

func TestValidateFile(t *testing.T) {
	t.Run("png image", func(t *testing.T) {
		f, err := ValidateFile("photo.PNG", pngHeader, KindImage)
		require.NoError(t, err)
		assert.Equal(t, ".png", f.Extension)
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("pdf document", func(t *testing.T) {
		f, err := ValidateFile("insurance.pdf", pdfHeader, KindImageOrDocument)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", f.ContentType)
	})

	t.Run("pdf not allowed for images", func(t *testing.T) {
		_, err := ValidateFile("insurance.pdf", pdfHeader, KindImage)
		assert.ErrorContains(t, err, "not allowed")
	})

	t.Run("spoofed extension", func(t *testing.T) {
		_, err := ValidateFile("photo.jpg", pdfHeader, KindImage)
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("missing extension", func(t *testing.T) {
		_, err := ValidateFile("photo", pngHeader, KindImage)
		assert.Error(t, err)
	})

	t.Run("too small", func(t *testing.T) {
		_, err := ValidateFile("a.png", []byte{0x89}, KindImage)
		assert.Error(t, err)
	})
}

func TestAllowedExtensions(t *testing.T) {
	assert.Equal(t, []string{".doc", ".docx", ".pdf"}, KindDocument.AllowedExtensions())
	assert.Len(t, KindImageOrDocument.AllowedExtensions(), 8)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "***@example.com", MaskEmail("j@example.com"))
	assert.Equal(t, "***", MaskEmail("ab"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
}

func TestRecordFailureDoesNotLogLoginFailed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lt := NewLoginTracker(nil, DefaultLoginTrackerConfig(), NewSecurityLoggerWithZap(zap.New(core), "test", "test"))

	_, err := lt.RecordFailure(context.Background(), "a@b.co", "1.2.3.4", "ua", "req")
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage(string(EventLoginFailed)).Len())
}

func TestTrackersWithoutRedis(t *testing.T) {
	ctx := context.Background()

	lt := NewLoginTracker(nil, DefaultLoginTrackerConfig(), NopLogger())
	blocked, err := lt.IsBlocked(ctx, "a@b.co", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked)

	blocked, err = lt.RecordFailure(ctx, "a@b.co", "1.2.3.4", "ua", "req")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.NoError(t, lt.Clear(ctx, "a@b.co", "1.2.3.4"))

	ul := NewUploadLimiter(nil, 10)
	ok, err := ul.Allow(ctx, "7")
	require.NoError(t, err)
	assert.True(t, ok)
}
