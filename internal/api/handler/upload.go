package handler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"

	"github.com/koji/nanobanana/internal/domain"
)

// readUpload pulls the image out of the multipart form's "file" field and
// verifies it is a decodable png/jpeg/gif/webp under the size cap.
// Parameters:
//   - c: Gin request context.
//   - maxBytes: upload size cap in bytes; 0 disables the cap.
// Returns:
//   - []byte: raw image bytes.
//   - string: detected MIME type.
//   - error: a *domain.ValidationError describing the rejection.
func readUpload(c *gin.Context, maxBytes int64) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", &domain.ValidationError{Param: "file", Reason: "file field is required"}
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", &domain.ValidationError{Param: "file", Reason: "could not read upload"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", &domain.ValidationError{Param: "file", Reason: "could not read upload"}
	}

	if len(data) == 0 {
		return nil, "", &domain.ValidationError{Param: "file", Reason: "empty file uploaded"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", &domain.ValidationError{
			Param:  "file",
			Reason: fmt.Sprintf("file too large (%.2fMB), max %.0fMB", float64(len(data))/1024/1024, float64(maxBytes)/1024/1024),
		}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &domain.ValidationError{Param: "file", Reason: "file is not a decodable image (png, jpeg, gif, webp)"}
	}

	return data, "image/" + format, nil
}

// formParams collects the recognized form fields that were actually sent.
func formParams(c *gin.Context, names ...string) map[string]string {
	params := make(map[string]string)
	for _, name := range names {
		if v, ok := c.GetPostForm(name); ok && v != "" {
			params[name] = v
		}
	}
	return params
}

// dataURL renders image bytes as an inline data URL for the JSON response.
func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// respondError maps the error taxonomy onto HTTP status codes: 400 for
// rejected input, 504 for deadline overruns, 502 for upstream failures.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsTimeout(err):
		status = http.StatusGatewayTimeout
	case domain.IsFatalUpstream(err), domain.IsTransient(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
