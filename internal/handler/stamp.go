package handler

import (
	"errors"
	"image"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ypk/neurostamp/internal/auth"
	"github.com/ypk/neurostamp/internal/db"
	"github.com/ypk/neurostamp/internal/fingerprint"
	"github.com/ypk/neurostamp/internal/model"
	"github.com/ypk/neurostamp/internal/registry"
	"github.com/ypk/neurostamp/internal/watermark"
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

type stampPage struct {
	StampCount  int
	Fingerprint string
	DownloadURL string
}

func (h *Handler) StampForm(w http.ResponseWriter, r *http.Request) {
	count, err := db.CountStampKeys(h.DB, auth.StampUIDFromContext(r.Context()))
	if err != nil {
		slog.Error("stamp: count stamp keys", "error", err)
	}
	h.renderAuth(w, r, "stamp.html", "Stamp Image", stampPage{StampCount: count})
}

// StampSubmit runs the full claim pipeline: fingerprint, fuzzy registry scan,
// watermark embed, encrypted key + registry persistence, output download.
func (h *Handler) StampSubmit(w http.ResponseWriter, r *http.Request) {
	stampUID := auth.StampUIDFromContext(r.Context())

	img, errMsg := h.uploadedImage(r)
	if errMsg != "" {
		h.stampError(w, r, errMsg)
		return
	}

	fp := fingerprint.DHash(img)

	// Pre-embed scan: reject obvious conflicts before the expensive embed.
	entries, err := db.ListRegistry(h.DB)
	if err != nil {
		slog.Error("stamp: list registry", "error", err)
		h.stampError(w, r, "Internal error.")
		return
	}
	if owner, found := registry.FindOwner(fp, entries); found && owner.OwnerUID != stampUID {
		h.stampConflict(w, r, owner.OwnerUID)
		return
	}

	text := "ID:" + stampUID
	marked, ref, err := watermark.EmbedImage(img, text, h.Cfg.StampAlpha, stampUID)
	if err != nil {
		var capErr *watermark.CapacityError
		var dimErr *watermark.DimensionError
		switch {
		case errors.As(err, &capErr):
			h.stampError(w, r, "Image is too small to carry an ownership stamp.")
		case errors.As(err, &dimErr):
			h.stampError(w, r, "Image dimensions are unsuitable for stamping.")
		default:
			slog.Error("stamp: embed", "error", err)
			h.stampError(w, r, "Internal error.")
		}
		return
	}

	blob, err := h.Keys.Seal(ref)
	if err != nil {
		slog.Error("stamp: seal reference vector", "error", err)
		h.stampError(w, r, "Internal error.")
		return
	}

	// The registry scan is re-run inside this transaction; a concurrent
	// claim of the same picture loses here, not silently.
	conflictOwner, err := db.RegisterStamp(h.DB,
		&model.RegistryEntry{Fingerprint: fp, OwnerUID: stampUID},
		&model.StampKey{ID: uuid.New().String(), OwnerUID: stampUID, Fingerprint: fp, KeyBlob: blob},
		registry.IsDuplicate,
	)
	if err != nil {
		slog.Error("stamp: register", "error", err)
		h.stampError(w, r, "Internal error.")
		return
	}
	if conflictOwner != "" {
		h.stampConflict(w, r, conflictOwner)
		return
	}

	outName := uuid.New().String() + ".png"
	outPath := filepath.Join(h.Cfg.DataDir, "stamped", outName)
	if err := watermark.SaveImage(marked, outPath, 0); err != nil {
		slog.Error("stamp: save output", "file", outPath, "error", err)
		h.stampError(w, r, "Internal error.")
		return
	}

	slog.Info("image stamped", "owner", stampUID, "fingerprint", fp, "output", outName)
	data := h.authPage(r, "Stamp Image")
	data.Flash = "Image stamped and registered."
	data.Data = stampPage{
		DownloadURL: "/stamped/" + outName,
		Fingerprint: fp,
	}
	h.render(w, r, "stamp.html", data)
}

// StampedDownload serves a previously produced output. Names are generated
// UUIDs, anything else is rejected.
func (h *Handler) StampedDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "name"))
	if !strings.HasSuffix(name, ".png") {
		http.NotFound(w, r)
		return
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, ".png")); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=stamped_"+name)
	http.ServeFile(w, r, filepath.Join(h.Cfg.DataDir, "stamped", name))
}

// uploadedImage parses the multipart upload and decodes it to an even-sized
// NRGBA image. Returns a user-facing error message on failure.
func (h *Handler) uploadedImage(r *http.Request) (*image.NRGBA, string) {
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		return nil, "Failed to parse upload."
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "No file selected."
	}
	defer file.Close()

	if !allowedImageExts[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, "Unsupported file type. Upload a JPEG, PNG, WebP or GIF image."
	}

	decoded, err := watermark.Decode(file)
	if err != nil {
		return nil, "Could not decode image."
	}
	return decoded, ""
}

func (h *Handler) stampError(w http.ResponseWriter, r *http.Request, msg string) {
	data := h.authPage(r, "Stamp Image")
	data.Error = msg
	h.render(w, r, "stamp.html", data)
}

func (h *Handler) stampConflict(w http.ResponseWriter, r *http.Request, ownerUID string) {
	ownerName := "unknown"
	if owner, err := db.GetUserByStampUID(h.DB, ownerUID); err == nil && owner != nil {
		ownerName = owner.Username
	}
	slog.Warn("stamp: registry conflict", "claimed_by", ownerUID)
	data := h.authPage(r, "Stamp Image")
	data.Error = "Copyright conflict: this image is already registered to '" + ownerName + "'."
	h.render(w, r, "stamp.html", data)
}
