package lxd

import (
	"io"
	"mime/multipart"
)

// MultipartPart is a single file of a multipart upload.
type MultipartPart struct {
	// Form field name
	Name string

	// File name advertised for the part
	Filename string

	// Part content, read once while the request is sent
	Content io.Reader
}

// Multipart represents a multipart/form-data request body.
type Multipart struct {
	// Extra request headers (e.g. X-LXD-properties)
	Headers map[string]string

	Parts []MultipartPart

	writer *multipart.Writer
}

// contentType prepares the multipart writer and returns the matching Content-Type header.
func (m *Multipart) contentType() string {
	m.writer = multipart.NewWriter(io.Discard)
	return m.writer.FormDataContentType()
}

// writeTo streams every part to w, closing it with the first error encountered.
func (m *Multipart) writeTo(w *io.PipeWriter) {
	boundary := m.writer.Boundary()

	mw := multipart.NewWriter(w)
	err := mw.SetBoundary(boundary)
	if err != nil {
		_ = w.CloseWithError(err)
		return
	}

	for _, part := range m.Parts {
		fw, err := mw.CreateFormFile(part.Name, part.Filename)
		if err != nil {
			_ = w.CloseWithError(err)
			return
		}

		if part.Content != nil {
			_, err = io.Copy(fw, part.Content)
			if err != nil {
				_ = w.CloseWithError(err)
				return
			}
		}
	}

	_ = w.CloseWithError(mw.Close())
}
