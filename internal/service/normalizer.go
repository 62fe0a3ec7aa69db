package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"pdf-ocr-webhook/internal/domain"
)

// pdfSignature is the 4-byte magic every PDF starts with. Checking it
// before the remote call catches the dominant webhook failure modes:
// broken base64 and wrong-field submissions.
var pdfSignature = []byte("%PDF")

// Payload is the normalized result of one inbound request: the raw PDF
// bytes plus validated OCR options.
type Payload struct {
	PDF      []byte
	Filename string
	Options  domain.OCROptions
}

// decoded carries the raw output of one decoder before validation.
type decoded struct {
	pdf      []byte
	filename string
	locale   string
	ocrType  string
}

// decoder attempts to extract a PDF and options from a request.
// A nil result with a nil error means "not applicable, try the next one".
type decoder interface {
	decode(r *http.Request, mediaType string, body func() ([]byte, error)) (*decoded, error)
}

// Normalizer converts the supported request encodings (JSON base64,
// multipart upload, raw body) into a single validated PDF payload.
type Normalizer struct {
	maxSize  int64
	decoders []decoder
}

// NewNormalizer creates a normalizer enforcing the given size limit.
func NewNormalizer(maxSize int64) *Normalizer {
	return &Normalizer{
		maxSize: maxSize,
		decoders: []decoder{
			jsonDecoder{},
			multipartDecoder{maxSize: maxSize},
			rawDecoder{},
		},
	}
}

// Normalize runs the decoder chain in order and validates the result.
// First matching decoder wins.
func (n *Normalizer) Normalize(r *http.Request) (*Payload, error) {
	mediaType := requestMediaType(r)

	var cached []byte
	bodyOnce := func() ([]byte, error) {
		if cached == nil {
			b, err := n.readBody(r)
			if err != nil {
				return nil, err
			}
			cached = b
		}
		return cached, nil
	}

	for _, d := range n.decoders {
		out, err := d.decode(r, mediaType, bodyOnce)
		if err != nil {
			return nil, err
		}
		if out == nil {
			continue
		}
		return n.validate(out)
	}

	return nil, domain.ErrNoInput
}

func (n *Normalizer) validate(d *decoded) (*Payload, error) {
	if len(d.pdf) == 0 {
		return nil, domain.ErrNoInput
	}
	if n.maxSize > 0 && int64(len(d.pdf)) > n.maxSize {
		return nil, domain.ErrFileTooLarge
	}
	if !bytes.HasPrefix(d.pdf, pdfSignature) {
		return nil, domain.ErrNotAPDF
	}

	opts, err := domain.NewOCROptions(d.locale, d.ocrType)
	if err != nil {
		return nil, err
	}

	return &Payload{PDF: d.pdf, Filename: d.filename, Options: opts}, nil
}

func (n *Normalizer) readBody(r *http.Request) ([]byte, error) {
	var reader io.Reader = r.Body
	if n.maxSize > 0 {
		reader = io.LimitReader(r.Body, n.maxSize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.ErrNoInput
	}
	if n.maxSize > 0 && int64(len(body)) > n.maxSize {
		return nil, domain.ErrFileTooLarge
	}
	return body, nil
}

func requestMediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}

// jsonDecoder handles {"pdf_data": "<base64>", "locale": ..., "ocr_type": ...}
// bodies. It applies when the request declares a JSON content type or the
// body itself is a JSON object.
type jsonDecoder struct{}

type ocrRequestBody struct {
	PDFData string `json:"pdf_data"`
	Locale  string `json:"locale"`
	OCRType string `json:"ocr_type"`
}

func (jsonDecoder) decode(r *http.Request, mediaType string, body func() ([]byte, error)) (*decoded, error) {
	declaresJSON := strings.Contains(mediaType, "json")
	if !declaresJSON && mediaType != "" && mediaType != "text/plain" {
		return nil, nil
	}

	raw, err := body()
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if !declaresJSON && (len(trimmed) == 0 || trimmed[0] != '{') {
		return nil, nil
	}

	var req ocrRequestBody
	if err := json.Unmarshal(trimmed, &req); err != nil {
		if declaresJSON {
			return nil, domain.ErrNoInput
		}
		return nil, nil
	}
	if req.PDFData == "" {
		if declaresJSON {
			return nil, domain.ErrNoInput
		}
		return nil, nil
	}

	pdf, err := decodeBase64PDF(req.PDFData)
	if err != nil {
		return nil, err
	}

	return &decoded{pdf: pdf, locale: req.Locale, ocrType: req.OCRType}, nil
}

// decodeBase64PDF decodes webhook-supplied base64, tolerating the two
// mangling modes seen in the wild: injected whitespace and stripped
// padding.
func decodeBase64PDF(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	if m := len(cleaned) % 4; m != 0 {
		cleaned += strings.Repeat("=", 4-m)
	}

	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, domain.ErrInvalidEncoding
	}
	return data, nil
}

// multipartDecoder handles multipart form uploads with a "file" field.
type multipartDecoder struct {
	maxSize int64
}

func (d multipartDecoder) decode(r *http.Request, mediaType string, _ func() ([]byte, error)) (*decoded, error) {
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, nil
	}

	maxMem := d.maxSize
	if maxMem <= 0 {
		maxMem = 32 << 20
	}
	if err := r.ParseMultipartForm(maxMem); err != nil {
		return nil, domain.ErrNoInput
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, domain.ErrNoInput
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return nil, domain.ErrNotAPDF
	}

	pdf, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.ErrNoInput
	}

	return &decoded{
		pdf:      pdf,
		filename: header.Filename,
		locale:   r.FormValue("locale"),
		ocrType:  r.FormValue("ocr_type"),
	}, nil
}

// rawDecoder handles bare application/pdf or octet-stream bodies, with
// options taken from the query string.
type rawDecoder struct{}

func (rawDecoder) decode(r *http.Request, mediaType string, body func() ([]byte, error)) (*decoded, error) {
	if mediaType != "application/pdf" && mediaType != "application/octet-stream" {
		return nil, nil
	}

	raw, err := body()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrNoInput
	}

	q := r.URL.Query()
	return &decoded{pdf: raw, locale: q.Get("locale"), ocrType: q.Get("ocr_type")}, nil
}
