package matching

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/oj"
)

// Request is the immutable description of an inbound call. The body is fully
// buffered before matching starts.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	rawQuery string

	// Parsed body forms, filled on first use. A Request belongs to one
	// goroutine so no synchronization is needed.
	jsonParsed bool
	jsonValue  any
	xmlParsed  bool
	xmlDoc     *etree.Document
}

// NewRequest describes r using body as the already-read request body.
// The query parameter named by skipParam, if any, is removed first.
func NewRequest(r *http.Request, body []byte, skipParam string) *Request {
	q := r.URL.Query()
	rawQuery := r.URL.RawQuery
	if skipParam != "" && q.Has(skipParam) {
		q.Del(skipParam)
		rawQuery = q.Encode()
	}
	return &Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    q,
		Header:   r.Header.Clone(),
		Body:     body,
		rawQuery: rawQuery,
	}
}

// URL returns the path with the query string, if any.
func (r *Request) URL() string {
	if r.rawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.rawQuery
}

// JSON returns the body parsed as JSON, or false if it is not JSON.
func (r *Request) JSON() (any, bool) {
	if !r.jsonParsed {
		r.jsonParsed = true
		if len(bytes.TrimSpace(r.Body)) > 0 {
			if v, err := oj.Parse(r.Body); err == nil {
				r.jsonValue = v
			}
		}
	}
	return r.jsonValue, r.jsonValue != nil
}

// XML returns the body parsed as an XML document, or false if it is not XML.
func (r *Request) XML() (*etree.Document, bool) {
	if !r.xmlParsed {
		r.xmlParsed = true
		if bytes.HasPrefix(bytes.TrimSpace(r.Body), []byte("<")) {
			doc := etree.NewDocument()
			if err := doc.ReadFromBytes(r.Body); err == nil {
				r.xmlDoc = doc
			}
		}
	}
	return r.xmlDoc, r.xmlDoc != nil
}

// flatHeaders returns the first value of every header keyed by lowercase name.
func (r *Request) flatHeaders() map[string]string {
	out := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			out[strings.ToLower(k)] = v[0]
		}
	}
	return out
}

// flatQuery returns the first value of every query parameter.
func (r *Request) flatQuery() map[string]string {
	out := make(map[string]string, len(r.Query))
	for k, v := range r.Query {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// Snapshot is a serializable view of a Request.
type Snapshot struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Path    string            `json:"path" yaml:"path"`
	Query   map[string]string `json:"query" yaml:"query"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    string            `json:"body" yaml:"body"`
}

// Snapshot returns the request as plain data, with header names lowercased.
func (r *Request) Snapshot() Snapshot {
	return Snapshot{
		Method:  r.Method,
		URL:     r.URL(),
		Path:    r.Path,
		Query:   r.flatQuery(),
		Headers: r.flatHeaders(),
		Body:    string(r.Body),
	}
}
