package hal

import (
	"encoding/json"
	"net/http"
)

// WriteResource writes an enhanced resource.
func WriteResource(w http.ResponseWriter, status int, r Resource) error {
	return writeJSON(w, ContentType, status, r)
}

// Write writes v as JSON with the given media type.
func Write(w http.ResponseWriter, contentType string, status int, v any) error {
	return writeJSON(w, contentType, status, v)
}

// WriteJSON writes a plain JSON value, used for pass-through payloads.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return writeJSON(w, JSONContentType, status, v)
}

// WriteError writes an error document. The HTTP status comes from the error.
func WriteError(w http.ResponseWriter, e Error) error {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
		e.Status = status
	}
	return writeJSON(w, JSONContentType, status, e)
}

// WriteErrorFromGo converts a Go error to an error response.
func WriteErrorFromGo(w http.ResponseWriter, path string, err error) error {
	e := ErrFromError(err)
	e.Path = path
	return WriteError(w, e)
}

func writeJSON(w http.ResponseWriter, contentType string, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		e := ErrInternal("failed to encode response")
		body, _ = json.Marshal(e)
		status = e.Status
		contentType = JSONContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, werr := w.Write(append(body, '\n')); werr != nil {
		return werr
	}
	return err
}
