package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ReadBody decodes the JSON body into T and runs its validate tags.
func ReadBody[T any](r *http.Request) (T, error) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, err
	}
	if err := validate.Struct(&body); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return body, nil
		}
		return body, err
	}
	return body, nil
}

func JSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// PathID returns the named route variable, "" when absent.
func PathID(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
