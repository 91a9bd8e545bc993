package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/models"
	"github.com/parishrama/diagnostic-api/internal/store/storetest"
	"github.com/parishrama/diagnostic-api/internal/upload"
	"github.com/parishrama/diagnostic-api/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memoryStores keeps everything in process. Account emails are unique.
func memoryStores() Stores {
	return Stores{
		Appointments:      storetest.NewMemory[models.Appointment](),
		Doctors:           storetest.NewMemory[models.Doctor](),
		Home:              storetest.NewMemory[models.HomeItem](),
		Laboratory:        storetest.NewMemory[models.LaboratoryTest](),
		PackageTests:      storetest.NewMemory[models.PackageTest](),
		Precision:         storetest.NewMemory[models.Precision](),
		SampleCollections: storetest.NewMemory[models.SampleCollection](),
		ServiceSections:   storetest.NewMemory[models.ServiceSection](),
		Accounts:          storetest.NewMemory[models.LoginAccount]("email"),
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	booked []string
}

func (n *recordingNotifier) AppointmentBooked(_ context.Context, apt *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, apt.Name)
}

type testServer struct {
	handler   *Handler
	router    *gin.Engine
	uploadDir string
	notifier  *recordingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, memoryStores(), nil)
}

func newTestServerWith(t *testing.T, stores Stores, db Pinger) *testServer {
	t.Helper()
	dir := t.TempDir()
	notifier := &recordingNotifier{}
	h := NewHandler(stores, NewUploaders(dir, zap.NewNop()),
		utils.NewTokenIssuer("test-secret", time.Hour), notifier, zap.NewNop())
	r := NewRouter(h, RouterOptions{
		CORSOrigins: []string{"*"},
		UploadDir:   dir,
		Database:    db,
	})
	return &testServer{handler: h, router: r, uploadDir: dir, notifier: notifier}
}

// response is Envelope with the payload left undecoded.
type response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Errors     []string        `json:"errors"`
	Count      *int            `json:"count"`
	Total      *int64          `json:"total"`
	Pagination *Pagination     `json:"pagination"`
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func (s *testServer) request(t *testing.T, method, path string, payload interface{}, header ...string) (int, response) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return s.do(t, req)
}

// multipartRequest builds a form with one PNG under "image" when withImage
// is set. Slice values become repeated fields.
func multipartRequest(t *testing.T, method, path string, fields map[string][]string, withImage bool) *http.Request {
	t.Helper()
	if !withImage {
		return multipartFileRequest(t, method, path, fields, "", nil)
	}
	return multipartFileRequest(t, method, path, fields, "image/png", pngBytes(t))
}

// multipartFileRequest attaches data as the "image" file with the declared
// content type. A nil data sends no file.
func multipartFileRequest(t *testing.T, method, path string, fields map[string][]string, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(name, v))
		}
	}
	if data != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="upload.png"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// onDisk maps a public upload path to its file under the upload root.
func (s *testServer) onDisk(public string) string {
	return filepath.Join(s.uploadDir, filepath.FromSlash(strings.TrimPrefix(public, upload.PublicPrefix)))
}
