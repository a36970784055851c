package files

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/fileshelf/service/internal/response"
	"github.com/fileshelf/service/internal/storage"
)

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc            *Service
	publicBase     string
	maxUploadBytes int64
}

// NewHandler creates a new files Handler. publicBase prefixes download URLs;
// when empty the base is taken from each request.
func NewHandler(svc *Service, publicBase string, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		publicBase:     strings.TrimRight(publicBase, "/"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes registers the file endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Get("/files", h.List)
	r.Get("/files/{filename}", h.Download)
	r.Delete("/files/{filename}", h.Delete)
	r.Get("/qrcode", h.QRCode)
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Store the multipart field "file" under its original file name. Existing files are never overwritten.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		417		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "request must be multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			response.BadRequest(w, "invalid multipart body")
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		// FileName is already reduced to its base element by mime/multipart.
		name := part.FileName()
		_, err = h.svc.Upload(r.Context(), name, part)
		part.Close()
		if err != nil {
			logrus.WithError(err).WithField("file", name).Warn("upload failed")
			response.ExpectationFailed(w,
				fmt.Sprintf("Could not upload the file: %s. Error: %s", name, err))
			return
		}

		response.Message(w, "Uploaded the file successfully: "+name)
		return
	}

	response.BadRequest(w, "required part 'file' is not present")
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns every stored file with its download URL. Order is unspecified.
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]FileInfo}
//	@Failure		500	{object}	response.Envelope
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.List(r.Context(), h.baseURL(r))
	if err != nil {
		logrus.WithError(err).Error("list files failed")
		response.InternalError(w, "Could not load the files!")
		return
	}
	response.OK(w, infos)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Streams the file as an attachment. Range requests are supported.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/files/{filename} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	if err != nil {
		response.BadRequest(w, "invalid file name")
		return
	}

	obj, err := h.svc.Open(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidName):
			response.BadRequest(w, "invalid file name")
		case h.svc.IsNotFound(err):
			response.NotFound(w, "Could not read the file!")
		default:
			logrus.WithError(err).WithField("file", name).Error("open file failed")
			response.InternalError(w, "Error: "+err.Error())
		}
		return
	}
	defer obj.Close()

	mtype, err := mimetype.DetectReader(obj)
	if err == nil {
		w.Header().Set("Content-Type", mtype.String())
	}
	if _, err := obj.Seek(0, io.SeekStart); err != nil {
		logrus.WithError(err).WithField("file", name).Error("rewind file failed")
		response.InternalError(w, "Error: "+err.Error())
		return
	}

	w.Header().Set("Content-Disposition", contentDisposition(obj.Name))
	http.ServeContent(w, r, obj.Name, obj.ModTime, obj)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Tags			files
//	@Produce		json
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{object}	response.Envelope
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/files/{filename} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	if err != nil {
		response.BadRequest(w, "invalid file name")
		return
	}

	existed, err := h.svc.Delete(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			response.BadRequest(w, "invalid file name")
			return
		}
		logrus.WithError(err).WithField("file", name).Error("delete failed")
		response.InternalError(w,
			fmt.Sprintf("Could not delete the file: %s. Error: %s", name, err))
		return
	}
	if !existed {
		response.NotFound(w, "The file does not exist!")
		return
	}
	response.Message(w, "Delete the file successfully: "+name)
}

// QRCode godoc
//
//	@Summary		QR code for the last file
//	@Description	Encodes the download URL of the file with the lexicographically greatest name. Use format=png for a raw image.
//	@Tags			files
//	@Produce		json
//	@Produce		png
//	@Param			format	query		string	false	"png for a raw image"
//	@Success		200		{object}	response.Envelope{data=QRCode}
//	@Failure		500		{object}	response.Envelope
//	@Router			/qrcode [get]
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.LastFile(r.Context())
	if err != nil {
		response.InternalError(w, "Could not load the last file from storage. Error: "+err.Error())
		return
	}

	link := DownloadURL(h.baseURL(r), name)
	img, err := h.svc.QRCode(link)
	if err != nil {
		logrus.WithError(err).WithField("url", link).Error("qr code generation failed")
		response.InternalError(w,
			fmt.Sprintf("Could not generate QR code for the file: %s. Error: %s", link, err))
		return
	}

	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
		return
	}

	response.OK(w, QRCode{
		Filename:    name,
		URL:         link,
		ContentType: "image/png",
		Image:       base64.StdEncoding.EncodeToString(img),
	})
}

// baseURL returns the configured public base or, failing that, the scheme and
// host the request came in on.
func (h *Handler) baseURL(r *http.Request) string {
	if h.publicBase != "" {
		return h.publicBase
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}

// filenameParam returns the decoded {filename} route parameter. chi matches
// against the raw path when one is present, leaving escapes in place.
func filenameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// contentDisposition builds an attachment header, quoting plain ASCII names
// directly and falling back to RFC 2231 encoding for everything else.
func contentDisposition(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
				return v
			}
			return "attachment"
		}
	}
	return `attachment; filename="` + name + `"`
}
