package handler

import (
	"log/slog"
	"net/http"

	"github.com/ypk/neurostamp/internal/auth"
	"github.com/ypk/neurostamp/internal/db"
	"github.com/ypk/neurostamp/internal/fingerprint"
	"github.com/ypk/neurostamp/internal/registry"
	"github.com/ypk/neurostamp/internal/watermark"
)

type verifyResult struct {
	Expected  string
	Extracted string
	Match     bool
}

func (h *Handler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	h.renderAuth(w, r, "verify.html", "Verify Ownership", nil)
}

// VerifySubmit extracts the watermark from an uploaded image and compares it
// against the caller's expected ownership tag. A mismatch is a normal
// negative result, not an error: heavy attacks decode to garbage and that is
// the answer.
func (h *Handler) VerifySubmit(w http.ResponseWriter, r *http.Request) {
	stampUID := auth.StampUIDFromContext(r.Context())

	img, errMsg := h.uploadedImage(r)
	if errMsg != "" {
		h.verifyError(w, r, errMsg)
		return
	}

	keys, err := db.ListStampKeys(h.DB, stampUID)
	if err != nil {
		slog.Error("verify: list stamp keys", "error", err)
		h.verifyError(w, r, "Internal error.")
		return
	}
	if len(keys) == 0 {
		h.verifyError(w, r, "No stamped images registered yet.")
		return
	}

	// Locate the stamp key by fuzzy-matching the upload's fingerprint
	// against the user's stamp history; fall back to the most recent key
	// when no fingerprint is close (heavy attacks can push the hash past
	// the duplicate threshold while the watermark still survives).
	fp := fingerprint.DHash(img)
	key := keys[0]
	for _, k := range keys {
		if registry.IsDuplicate(fp, k.Fingerprint) {
			key = k
			break
		}
	}

	ref, err := h.Keys.Unseal(key.KeyBlob)
	if err != nil {
		slog.Error("verify: unseal stamp key", "key", key.ID, "error", err)
		h.verifyError(w, r, "Internal error.")
		return
	}

	expected := "ID:" + stampUID
	extracted, err := watermark.ExtractImage(img, ref, len(expected), h.Cfg.StampAlpha, stampUID)
	if err != nil {
		slog.Error("verify: extract", "error", err)
		h.verifyError(w, r, "Image dimensions are unsuitable for verification.")
		return
	}

	result := verifyResult{
		Expected:  expected,
		Extracted: extracted,
		Match:     extracted == expected,
	}
	slog.Info("verification complete", "owner", stampUID, "match", result.Match)
	h.renderAuth(w, r, "verify.html", "Verify Ownership", result)
}

func (h *Handler) verifyError(w http.ResponseWriter, r *http.Request, msg string) {
	data := h.authPage(r, "Verify Ownership")
	data.Error = msg
	h.render(w, r, "verify.html", data)
}
