package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileshelf/service/internal/qrcode"
	"github.com/fileshelf/service/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, publicBase string, maxUpload int64) (http.Handler, *storage.Local) {
	t.Helper()
	store, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	h := NewHandler(NewService(store, qrcode.PNGEncoder{}, 250), publicBase, maxUpload)
	r := chi.NewRouter()
	h.Routes(r)
	return r, store
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r, _ := newTestRouter(t, "", 1<<20)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, srv *httptest.Server, filename string, content []byte) (int, envelope) {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, content)
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	return decodeEnvelope(t, resp)
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (int, envelope) {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeQR(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

func TestEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	content := []byte("%PDF-1.4\n%quarterly numbers\n")

	status, env := upload(t, srv, "report.pdf", content)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Uploaded the file successfully: report.pdf", env.Message)

	// Listing
	status, env = decodeEnvelope(t, do(t, http.MethodGet, srv.URL+"/files"))
	require.Equal(t, http.StatusOK, status)
	var infos []FileInfo
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	assert.Equal(t, []FileInfo{{Name: "report.pdf", URL: srv.URL + "/files/report.pdf"}}, infos)

	// Download
	resp := do(t, http.MethodGet, srv.URL+"/files/report.pdf")
	got, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, content, got)
	assert.Equal(t, `attachment; filename="report.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	// Delete, then it is gone
	status, env = decodeEnvelope(t, do(t, http.MethodDelete, srv.URL+"/files/report.pdf"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Delete the file successfully: report.pdf", env.Message)

	status, env = decodeEnvelope(t, do(t, http.MethodDelete, srv.URL+"/files/report.pdf"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "The file does not exist!", env.Error)

	status, _ = decodeEnvelope(t, do(t, http.MethodGet, srv.URL+"/files/report.pdf"))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListEmpty(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/files")
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(body))
}

func TestUploadDuplicate(t *testing.T) {
	srv := newTestServer(t)

	status, _ := upload(t, srv, "a.txt", []byte("first"))
	require.Equal(t, http.StatusOK, status)

	status, env := upload(t, srv, "a.txt", []byte("second"))
	assert.Equal(t, http.StatusExpectationFailed, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "Could not upload the file: a.txt. Error: ")
	assert.Contains(t, env.Error, storage.ErrAlreadyExists.Error())

	resp := do(t, http.MethodGet, srv.URL+"/files/a.txt")
	got, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "first", string(got))
}

func TestUploadTooLarge(t *testing.T) {
	r, store := newTestRouter(t, "", 64)
	body, ct := multipartBody(t, "file", "big.bin", bytes.Repeat([]byte("A"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusExpectationFailed}, rec.Code)
	names, err := store.List(req.Context())
	require.NoError(t, err)
	assert.Empty(t, names, "partial upload left behind")
}

func TestUploadBadRequests(t *testing.T) {
	r, _ := newTestRouter(t, "", 1<<20)

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("raw"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		body, ct := multipartBody(t, "document", "a.txt", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPathTraversalRejected(t *testing.T) {
	r, _ := newTestRouter(t, "", 1<<20)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/files/..%2F..%2Fetc%2Fpasswd", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
	}
}

func TestEscapedFileName(t *testing.T) {
	srv := newTestServer(t)

	status, _ := upload(t, srv, "my report.txt", []byte("spaced"))
	require.Equal(t, http.StatusOK, status)

	resp := do(t, http.MethodGet, srv.URL+"/files/my%20report.txt")
	got, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "spaced", string(got))
}

func TestQRCode(t *testing.T) {
	srv := newTestServer(t)

	status, env := decodeEnvelope(t, do(t, http.MethodGet, srv.URL+"/qrcode"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, env.Error, "Could not load the last file from storage")

	status, _ = upload(t, srv, "a.png", []byte("not really a png"))
	require.Equal(t, http.StatusOK, status)

	status, env = decodeEnvelope(t, do(t, http.MethodGet, srv.URL+"/qrcode"))
	require.Equal(t, http.StatusOK, status)
	var qr QRCode
	require.NoError(t, json.Unmarshal(env.Data, &qr))
	assert.Equal(t, "a.png", qr.Filename)
	assert.Equal(t, srv.URL+"/files/a.png", qr.URL)
	assert.Equal(t, "image/png", qr.ContentType)

	img, err := base64.StdEncoding.DecodeString(qr.Image)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/files/a.png", decodeQR(t, img))

	resp := do(t, http.MethodGet, srv.URL+"/qrcode?format=png")
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, srv.URL+"/files/a.png", decodeQR(t, raw))
}

func TestQRCodeUsesPublicBase(t *testing.T) {
	r, store := newTestRouter(t, "https://files.example.com/", 1<<20)
	ctx := context.Background()
	_, err := store.Save(ctx, "2023-10.png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	_, err = store.Save(ctx, "2023-2.png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qrcode", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var qr QRCode
	require.NoError(t, json.Unmarshal(env.Data, &qr))
	assert.Equal(t, "2023-2.png", qr.Filename)
	assert.Equal(t, "https://files.example.com/files/2023-2.png", qr.URL)
}

func TestBaseURLFromForwardedProto(t *testing.T) {
	h := NewHandler(nil, "", 0)
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Host = "shelf.internal:8080"
	req.Header.Set("X-Forwarded-Proto", "https, http")

	assert.Equal(t, "https://shelf.internal:8080", h.baseURL(req))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="report.pdf"`, contentDisposition("report.pdf"))

	v := contentDisposition("résumé.pdf")
	assert.True(t, strings.HasPrefix(v, "attachment; filename*=utf-8''"), v)
	assert.Contains(t, v, "r%C3%A9sum%C3%A9.pdf")
}
