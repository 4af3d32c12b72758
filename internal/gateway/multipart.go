package gateway

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FilePart is the form field name of the uploaded file.
const FilePart = "file"

const defaultMIMEType = "application/octet-stream"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// newBoundary returns a fresh boundary for one upload.
func newBoundary() string {
	return "crux-" + uuid.NewString()
}

func buildMultipart(up Upload) ([]byte, string, error) {
	if len(up.Data) == 0 {
		return nil, "", fmt.Errorf("upload %s: no data", up.Path)
	}
	filename := strings.TrimSpace(up.Filename)
	if filename == "" {
		return nil, "", fmt.Errorf("upload %s: filename required", up.Path)
	}
	mimeType := strings.TrimSpace(up.MIMEType)
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(newBoundary()); err != nil {
		return nil, "", fmt.Errorf("set boundary: %w", err)
	}

	keys := make([]string, 0, len(up.Fields))
	for k := range up.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, up.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FilePart, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
