package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"quiver/httpcall"
)

// Request is one queued unit of work. The id keys the result map; the last
// completion wins when the caller reuses an id. Exactly one body form should
// be set; when several are, the precedence is raw, then multipart, then
// form, then JSON.
type Request struct {
	ID     string
	Method string
	URL    string

	// Headers are merged over the dispatcher's default headers;
	// request-specific entries win.
	Headers map[string]string

	// JSON is encoded as an application/json object body.
	JSON map[string]any
	// Form is encoded as an application/x-www-form-urlencoded body.
	Form map[string]string
	// Raw is sent verbatim with RawContentType.
	Raw            []byte
	RawContentType string
	// MultipartFields and MultipartFiles (field name to file path) are
	// encoded as a multipart form.
	MultipartFields map[string]string
	MultipartFiles  map[string]string
}

// build materializes the transport request. A failure here is reported as a
// synthesized failure result rather than dropping the request.
func (r *Request) build(ctx context.Context, defaults map[string]string, userAgent string) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	body, bodyContentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, err
	}

	// Every request defaults to JSON unless an encoding or the caller
	// says otherwise.
	req.Header.Set("Content-Type", "application/json")
	for k, v := range defaults {
		req.Header.Set(k, v)
	}
	if bodyContentType != "" {
		req.Header.Set("Content-Type", bodyContentType)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return req, nil
}

func (r *Request) encodeBody() (io.Reader, string, error) {
	switch {
	case r.Raw != nil:
		return bytes.NewReader(r.Raw), r.RawContentType, nil
	case len(r.MultipartFields) > 0 || len(r.MultipartFiles) > 0:
		return httpcall.MultipartBody(r.MultipartFields, r.MultipartFiles)
	case len(r.Form) > 0:
		values := url.Values{}
		for k, v := range r.Form {
			values.Set(k, v)
		}
		return bytes.NewBufferString(values.Encode()), "application/x-www-form-urlencoded", nil
	case r.JSON != nil:
		encoded, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	default:
		return nil, "", nil
	}
}
