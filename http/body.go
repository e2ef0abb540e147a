package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// Content types understood by the body encoder.
const (
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
)

type contentKind int

const (
	contentUnsupported contentKind = iota
	contentJSON
	contentForm
	contentMultipart
)

// parseContentKind maps a Content-Type header value to an encoding. Media
// type parameters such as charset are ignored.
func parseContentKind(contentType string) contentKind {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case ContentTypeJSON:
		return contentJSON
	case ContentTypeForm:
		return contentForm
	case ContentTypeMultipart:
		return contentMultipart
	default:
		return contentUnsupported
	}
}

// encodedBody is a request payload ready for the wire. contentType, when set,
// replaces the caller's Content-Type header (multipart needs its boundary).
type encodedBody struct {
	data        []byte
	contentType string
}

// encodeBody resolves the outbound payload from the body and files according
// to contentType. It returns nil when there is nothing to send.
func encodeBody(body any, files map[string]string, contentType string) (*encodedBody, error) {
	if isEmpty(body) {
		// files alone are sent only under an explicit multipart Content-Type
		if len(files) == 0 || parseContentKind(contentType) != contentMultipart {
			return nil, nil
		}
		return encodeMultipart(nil, files)
	}
	if contentType == "" {
		return nil, &UnsupportedContentTypeError{}
	}

	switch parseContentKind(contentType) {
	case contentJSON:
		data, err := encodeJSON(body)
		if err != nil {
			return nil, err
		}
		return &encodedBody{data: data}, nil
	case contentForm:
		data, err := encodeForm(body)
		if err != nil {
			return nil, err
		}
		return &encodedBody{data: data}, nil
	case contentMultipart:
		return encodeMultipart(body, files)
	default:
		return nil, &UnsupportedContentTypeError{ContentType: contentType}
	}
}

// encodeJSON serializes body without escaping non-ASCII characters, slashes
// or HTML characters. Strings and byte slices are treated as encoded JSON.
func encodeJSON(body any) ([]byte, error) {
	switch b := body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}

	if !validUTF8(reflect.ValueOf(body), 0) {
		return nil, &EncodingError{ContentType: ContentTypeJSON, Err: fmt.Errorf("malformed UTF-8 characters")}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, &EncodingError{ContentType: ContentTypeJSON, Err: err}
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// encodeForm form-encodes a mapping. Keys are emitted in sorted order.
func encodeForm(body any) ([]byte, error) {
	switch b := body.(type) {
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}

	values, err := formValues(body)
	if err != nil {
		return nil, &EncodingError{ContentType: ContentTypeForm, Err: err}
	}
	return []byte(values.Encode()), nil
}

// formValues flattens a mapping into url.Values. Nested maps and slices use
// bracket notation: {"a": {"b": 1}} becomes a[b]=1 and {"c": [1, 2]} becomes
// c[0]=1&c[1]=2.
func formValues(body any) (url.Values, error) {
	switch b := body.(type) {
	case url.Values:
		return b, nil
	case map[string][]string:
		return url.Values(b), nil
	case map[string]string:
		values := make(url.Values, len(b))
		for k, v := range b {
			values.Set(k, v)
		}
		return values, nil
	case map[string]any:
		values := make(url.Values, len(b))
		for k, v := range b {
			flattenForm(values, k, v)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("cannot form-encode %T", body)
	}
}

func flattenForm(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
		// null entries are dropped
	case map[string]any:
		for k, child := range val {
			flattenForm(values, key+"["+k+"]", child)
		}
	case map[string]string:
		for k, child := range val {
			values.Add(key+"["+k+"]", child)
		}
	case []any:
		for i, child := range val {
			flattenForm(values, key+"["+strconv.Itoa(i)+"]", child)
		}
	case []string:
		for i, child := range val {
			values.Add(key+"["+strconv.Itoa(i)+"]", child)
		}
	case bool:
		if val {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case string:
		values.Add(key, val)
	default:
		values.Add(key, fmt.Sprint(val))
	}
}

// encodeMultipart merges the body mapping with the file attachments. Every
// file path is checked before anything is written. A file field replaces a
// body field of the same name.
func encodeMultipart(body any, files map[string]string) (*encodedBody, error) {
	fields := sortedKeys(files)
	for _, field := range fields {
		if _, err := os.Stat(files[field]); err != nil {
			return nil, &FileNotFoundError{Field: field, Path: files[field]}
		}
	}

	var values url.Values
	if !isEmpty(body) {
		// non-mapping bodies contribute no fields
		values, _ = formValues(body)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(values) {
		if _, isFile := files[key]; isFile {
			continue
		}
		for _, v := range values[key] {
			if err := w.WriteField(key, v); err != nil {
				return nil, &EncodingError{ContentType: ContentTypeMultipart, Err: err}
			}
		}
	}

	for _, field := range fields {
		if err := writeFilePart(w, field, files[field]); err != nil {
			return nil, &EncodingError{ContentType: ContentTypeMultipart, Err: err}
		}
	}

	if err := w.Close(); err != nil {
		return nil, &EncodingError{ContentType: ContentTypeMultipart, Err: err}
	}

	return &encodedBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(w *multipart.Writer, field, path string) error {
	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(path); err == nil {
		contentType = mtype.String()
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(path))))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(part, f)
	return err
}

// isEmpty reports whether body carries no payload: nil, an empty string or
// byte slice, or an empty map, slice or array.
func isEmpty(body any) bool {
	if body == nil {
		return true
	}
	switch b := body.(type) {
	case string:
		return b == ""
	case []byte:
		return len(b) == 0
	}
	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// maxUTF8Depth bounds the walk so cyclic values are left to the encoder.
const maxUTF8Depth = 256

// validUTF8 reports whether every string and map key reachable from v is
// valid UTF-8. encoding/json would otherwise substitute U+FFFD silently.
func validUTF8(v reflect.Value, depth int) bool {
	if !v.IsValid() || depth > maxUTF8Depth {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return validUTF8(v.Elem(), depth+1)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !validUTF8(iter.Key(), depth+1) || !validUTF8(iter.Value(), depth+1) {
				return false
			}
		}
	case reflect.Slice, reflect.Array:
		// byte slices are base64 encoded
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return true
		}
		for i := 0; i < v.Len(); i++ {
			if !validUTF8(v.Index(i), depth+1) {
				return false
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() && !validUTF8(v.Field(i), depth+1) {
				return false
			}
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
