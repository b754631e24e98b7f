package api

import (
	"encoding/json"
	"net/http"

	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/i18n"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends a translated message with its catalog key.
func writeError(w http.ResponseWriter, status int, lang language.Tag, key string) {
	writeJSON(w, status, map[string]string{
		"error": i18n.T(lang, key),
		"key":   key,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
