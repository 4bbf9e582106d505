package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	apperrors "melodicamate/internal/common/errors"
	"melodicamate/internal/common/validation"
)

// MaxJSONBodyBytes caps the JSON request bodies BindJSON will read.
const MaxJSONBodyBytes = 1 << 20

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeObject reads a JSON object from r. A missing, malformed or non-object
// body yields an empty map.
func DecodeObject(r io.Reader) map[string]interface{} {
	doc := map[string]interface{}{}
	if r == nil {
		return doc
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil || doc == nil {
		return map[string]interface{}{}
	}
	return doc
}

// BindJSON decodes the request body, validates it against schema and fills
// dest. Validation failures come back as invalid_input errors.
func BindJSON(r *http.Request, v *validation.Validator, schema string, dest interface{}) error {
	var doc map[string]interface{}
	if r.Body == nil {
		doc = DecodeObject(nil)
	} else {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONBodyBytes+1))
		if err != nil {
			return apperrors.NewBadRequestError(err.Error())
		}
		if len(data) > MaxJSONBodyBytes {
			return apperrors.NewPayloadTooLargeError(MaxJSONBodyBytes)
		}
		doc = DecodeObject(bytes.NewReader(data))
	}

	result, err := v.Validate(schema, doc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return apperrors.NewInvalidInputError(result.FirstMessage())
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	return nil
}
