package middleware

import (
	"net/http"
	"strings"
)

// overrideField is the hidden form field HTML forms use to express PATCH and
// DELETE, which browsers cannot send natively.
const overrideField = "_method"

// MethodOverride rewrites POST requests carrying a _method form field into
// the verb the form intended. It wraps the router rather than running as a
// gin middleware because routing dispatches on the method before middleware
// run.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isFormContentType(r) {
			// ParseForm caches into r.PostForm, so handlers reading the form
			// later see the same data.
			if err := r.ParseForm(); err == nil {
				switch strings.ToUpper(r.PostFormValue(overrideField)) {
				case http.MethodPut:
					r.Method = http.MethodPut
				case http.MethodPatch:
					r.Method = http.MethodPatch
				case http.MethodDelete:
					r.Method = http.MethodDelete
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isFormContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
