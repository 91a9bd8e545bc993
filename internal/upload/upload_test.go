package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

// pngBytes is a valid 1x1 PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartContext(t *testing.T, field, filename, contentType string, content []byte) *gin.Context {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("title", "x"))
	if field != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestAcceptStoresImage(t *testing.T) {
	root := t.TempDir()
	u := New(root, DoctorsDir, nil)

	stored, ok, err := u.Accept(multipartContext(t, "image", "Photo.PNG", "image/png", pngBytes), "image")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(stored, "/uploads/doctors/image-"))
	assert.True(t, strings.HasSuffix(stored, ".png"))

	data, err := os.ReadFile(filepath.Join(root, DoctorsDir, filepath.Base(stored)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestAcceptWithoutFile(t *testing.T) {
	u := New(t.TempDir(), HomeDir, nil)

	stored, ok, err := u.Accept(multipartContext(t, "", "", "", nil), "image")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, stored)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	_, ok, err = u.Accept(c, "image")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcceptRejectsNonImages(t *testing.T) {
	u := New(t.TempDir(), HomeDir, nil)

	_, _, err := u.Accept(multipartContext(t, "image", "notes.txt", "text/plain", []byte("hello")), "image")
	assert.Equal(t, apperr.KindUnsupportedMedia, apperr.KindOf(err))

	// Declared as an image but the bytes are not.
	_, _, err = u.Accept(multipartContext(t, "image", "fake.png", "image/png", []byte("plain text")), "image")
	assert.Equal(t, apperr.KindUnsupportedMedia, apperr.KindOf(err))
}

func TestAcceptIgnoresClientExtension(t *testing.T) {
	root := t.TempDir()
	u := New(root, HomeDir, nil)
	payload := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;<script>alert(1)</script>")

	stored, ok, err := u.Accept(multipartContext(t, "image", "evil.html", "image/gif", payload), "image")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(stored, ".gif"), stored)

	stored, ok, err = u.Accept(multipartContext(t, "image", "photo", "image/png", pngBytes), "image")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(stored, ".png"), stored)
}

func TestAcceptRejectsSVG(t *testing.T) {
	u := New(t.TempDir(), HomeDir, nil)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

	_, _, err := u.Accept(multipartContext(t, "image", "logo.svg", "image/svg+xml", svg), "image")
	assert.Equal(t, apperr.KindUnsupportedMedia, apperr.KindOf(err))
}

func TestAcceptTruncatedBody(t *testing.T) {
	u := New(t.TempDir(), HomeDir, nil)
	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...)
	c := multipartContext(t, "image", "big.png", "image/png", big)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)

	_, ok, err := u.Accept(c, "image")
	assert.False(t, ok)
	assert.Equal(t, ErrTooLarge, err)
}

func TestAcceptRejectsLargeFiles(t *testing.T) {
	u := New(t.TempDir(), HomeDir, nil)
	big := append(append([]byte{}, pngBytes...), make([]byte, MaxSize)...)

	_, _, err := u.Accept(multipartContext(t, "image", "big.png", "image/png", big), "image")
	assert.Equal(t, apperr.KindUnsupportedMedia, apperr.KindOf(err))
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	u := New(root, HomeDir, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, HomeDir), 0o755))
	file := filepath.Join(root, HomeDir, "old.png")
	require.NoError(t, os.WriteFile(file, pngBytes, 0o644))

	u.Remove("https://cdn.example.com/old.png")
	assert.FileExists(t, file)

	u.Remove("/uploads/home/old.png")
	assert.NoFileExists(t, file)

	// Already removed: logged, not a failure.
	u.Remove("/uploads/home/old.png")
}

func TestLocalPathStaysInsideRoot(t *testing.T) {
	u := New("/srv/uploads", HomeDir, nil)

	got, ok := u.localPath("/uploads/../../etc/passwd")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/srv/uploads", "etc", "passwd"), got)

	_, ok = u.localPath("/uploads/")
	assert.False(t, ok)
}
