package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator lets a request DTO report its own field errors. An empty slice
// means the payload is acceptable.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate fills dest from the request body, rejecting unknown
// fields, then runs the DTO's Validate if it has one. A false return means a
// 400 error has already been written and the handler must stop.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}
