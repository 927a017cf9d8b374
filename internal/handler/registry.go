package handler

import (
	"log/slog"
	"net/http"

	"github.com/ypk/neurostamp/internal/db"
)

type registryRow struct {
	Fingerprint string
	OwnerUID    string
	OwnerName   string
	CreatedAt   string
}

// RegistryView lists every claimed fingerprint with its owner.
func (h *Handler) RegistryView(w http.ResponseWriter, r *http.Request) {
	entries, err := db.ListRegistry(h.DB)
	if err != nil {
		slog.Error("registry view: list", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]registryRow, 0, len(entries))
	for _, e := range entries {
		name := "unknown"
		if owner, err := db.GetUserByStampUID(h.DB, e.OwnerUID); err == nil && owner != nil {
			name = owner.Username
		}
		rows = append(rows, registryRow{
			Fingerprint: e.Fingerprint,
			OwnerUID:    e.OwnerUID,
			OwnerName:   name,
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04 UTC"),
		})
	}

	h.renderAuth(w, r, "registry.html", "Ownership Registry", rows)
}
