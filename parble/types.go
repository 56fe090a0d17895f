package parble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"reflect"
	"strings"
	"time"
)

// TimestampLayout is the textual form of timestamps in serialized Files
const TimestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are accepted when decoding, in order
var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a UTC time with second precision
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the second and converts it to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// MarshalJSON renders the timestamp as "YYYY-MM-DD HH:MM:SS"
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

// UnmarshalJSON accepts the serialized form as well as ISO 8601 timestamps
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			*t = NewTimestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Timings holds processing timestamps. Done is nil while processing is pending.
type Timings struct {
	Upload Timestamp  `json:"upload"`
	Done   *Timestamp `json:"done"`
}

// IsDone reports whether processing completed
func (t *Timings) IsDone() bool {
	return t != nil && t.Done != nil
}

// Classification describes how a document was classified
type Classification struct {
	Automated    bool    `json:"automated"`
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
	StartPage    int     `json:"start_page"`
	EndPage      int     `json:"end_page"`
}

// Field is a single extracted value
type Field struct {
	Page        int    `json:"page"`
	Coordinates []int  `json:"coordinates"` // bounding box [x1, y1, x2, y2]
	Text        string `json:"text"`
	Value       any    `json:"value"`
	Confidence  int    `json:"confidence"`
	Automated   bool   `json:"automated"`
}

// Document is one classified sub-unit of a File
type Document struct {
	Automated      bool             `json:"automated"`
	Classification Classification   `json:"classification"`
	HeaderFields   map[string]Field `json:"header_fields"`
	LineItems      any              `json:"line_items,omitempty"` // passed through as decoded
	Tables         any              `json:"tables,omitempty"`
}

// Type returns the classified document type
func (d Document) Type() string {
	return d.Classification.DocumentType
}

// PDFFetcher retrieves the PDF rendition of a file
type PDFFetcher interface {
	GetFilePDF(ctx context.Context, id string) (*bytes.Reader, error)
}

// File is a processed upload. It is produced by parsing a server payload and is
// bound to the PDFFetcher that parsed it; the binding is not serialized.
// Documents keeps the server order and must not be modified.
// A File is not safe for concurrent use.
type File struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename,omitempty"`
	Automated     bool       `json:"automated"`
	NumberOfPages int        `json:"number_of_pages"`
	Timings       *Timings   `json:"timings,omitempty"`
	Documents     []Document `json:"documents"`

	fetcher PDFFetcher
	pdf     []byte
}

// ParseFile validates payload against the File schema and binds the result to fetcher
func ParseFile(payload []byte, fetcher PDFFetcher) (*File, error) {
	canonical, err := validateFilePayload(payload)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(canonical, &f); err != nil {
		return nil, &ValidationError{Err: err}
	}
	f.fetcher = fetcher

	return &f, nil
}

// Name returns the filename of the file
func (f *File) Name() string {
	return f.Filename
}

// Len returns the number of documents
func (f *File) Len() int {
	return len(f.Documents)
}

// At returns the i-th document. It panics if i is out of range.
func (f *File) At(i int) Document {
	return f.Documents[i]
}

// All iterates over the documents in server order. Every call starts over.
func (f *File) All() iter.Seq2[int, Document] {
	return func(yield func(int, Document) bool) {
		for i, d := range f.Documents {
			if !yield(i, d) {
				return
			}
		}
	}
}

// PDF returns the PDF rendition of the file. The first call fetches it, later
// calls serve the cached content until ClearPDF is called. Every call returns a
// reader positioned at the start.
func (f *File) PDF(ctx context.Context) (*bytes.Reader, error) {
	if f.pdf == nil {
		if f.fetcher == nil {
			return nil, fmt.Errorf("file %s is not bound to an SDK", f.ID)
		}
		r, err := f.fetcher.GetFilePDF(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read pdf: %w", err)
		}
		f.pdf = data
	}
	return bytes.NewReader(f.pdf), nil
}

// PDFCached reports whether the PDF content is cached
func (f *File) PDFCached() bool {
	return f.pdf != nil
}

// ClearPDF drops the cached PDF so the next PDF call fetches it again
func (f *File) ClearPDF() {
	f.pdf = nil
}

// Bind attaches the file to a fetcher, e.g. after decoding a serialized File
func (f *File) Bind(fetcher PDFFetcher) {
	f.fetcher = fetcher
}

// Equal compares the server-provided attributes only
func (f *File) Equal(other *File) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.ID == other.ID &&
		f.Filename == other.Filename &&
		f.Automated == other.Automated &&
		f.NumberOfPages == other.NumberOfPages &&
		reflect.DeepEqual(f.Timings, other.Timings) &&
		reflect.DeepEqual(f.Documents, other.Documents)
}
