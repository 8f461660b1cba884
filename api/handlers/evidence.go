package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Evidence handles signed evidence-upload requests. Evidence images are
// uploaded directly from the client to Cloudinary; the server only vends a
// short-lived signature scoped to the evidence folder.
type Evidence struct{}

// UploadSignatureHandler generates a signature for a direct evidence upload.
// An optional case query parameter scopes the upload folder to that case.
func (e Evidence) UploadSignatureHandler(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	folder := "evidence"
	if caseID := r.URL.Query().Get("case"); caseID != "" {
		folder = "evidence/" + caseID
	}

	// params are signed in alphabetical order
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("folder=" + folder + "&timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"folder":    folder,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
