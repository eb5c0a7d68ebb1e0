package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/ingestion"
)

const (
	// formOverhead is the allowance for multipart framing and text fields
	// on top of the resume itself.
	formOverhead = 1 << 20
	// formMemory is how much of a multipart body is held in memory before
	// spilling to disk.
	formMemory = 1 << 20
)

var pdfMagic = []byte("%PDF-")

// resumeUpload is a resume copied to a temp file owned by one request.
type resumeUpload struct {
	doc     analysis.Document
	form    *multipart.Form
	cleanup func()
}

// receiveResume parses the multipart body and stores the "resume" part in a
// temp file. Only PDFs within the upload limit are accepted. The caller must
// call cleanup once the document is no longer needed; it is a no-op on error.
func (s *Server) receiveResume(w http.ResponseWriter, r *http.Request) (*resumeUpload, error) {
	limit := s.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, s.tooLarge()
		}
		return nil, &analysis.ValidationError{Field: "resume", Message: "request must be multipart/form-data with a resume file"}
	}
	form := r.MultipartForm
	removeForm := func() {
		if err := form.RemoveAll(); err != nil {
			s.requestLogger(r).Warn("failed to remove multipart files", "error", err)
		}
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		removeForm()
		return nil, &analysis.ValidationError{Field: "resume", Message: "a resume file is required"}
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	if header.Size > limit {
		removeForm()
		return nil, s.tooLarge()
	}
	if !ingestion.IsPDF(header.Filename, header.Header.Get("Content-Type")) {
		removeForm()
		return nil, &analysis.ValidationError{Field: "resume", Message: "only PDF resumes are accepted"}
	}

	path, err := s.storeUpload(file)
	if err != nil {
		removeForm()
		return nil, err
	}

	return &resumeUpload{
		doc:  analysis.Document{Path: path, ContentType: ingestion.ContentTypePDF},
		form: form,
		cleanup: func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.requestLogger(r).Warn("failed to remove uploaded resume", "path", path, "error", err)
			}
			removeForm()
		},
	}, nil
}

// storeUpload copies the part to a temp file after checking the PDF signature.
// Empty files pass the check so extraction reports them as unreadable.
func (s *Server) storeUpload(file io.Reader) (string, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if n > 0 && !bytes.Equal(head, pdfMagic) {
		return "", &analysis.ValidationError{Field: "resume", Message: "file content is not a PDF"}
	}

	tmp, err := os.CreateTemp(s.cfg.UploadDir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()

	_, copyErr := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), file))
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

func (s *Server) tooLarge() error {
	limit := fmt.Sprintf("%d bytes", s.cfg.MaxUploadBytes)
	if s.cfg.MaxUploadBytes >= 1<<20 {
		limit = fmt.Sprintf("%.1f MB", float64(s.cfg.MaxUploadBytes)/(1<<20))
	}
	return &analysis.ValidationError{Field: "resume", Message: "file exceeds the " + limit + " upload limit"}
}
