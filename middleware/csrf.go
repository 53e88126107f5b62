package middleware

import (
	"net/http"

	authcore "github.com/veriport/authcore"
)

// CSRFHeaderName is the header carrying the anti-forgery token on
// state-changing requests.
const CSRFHeaderName = "X-CSRF-Token"

// CSRF rejects unsafe-method requests whose supplied token does not match
// the one bound to the session. Safe methods pass through untouched. Must
// run after [Guard].
func CSRF(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			info, ok := SessionFromContext(r.Context())
			if !ok || engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			supplied := r.Header.Get(CSRFHeaderName)
			if supplied == "" {
				supplied = r.PostFormValue("csrf_token")
			}

			if err := engine.ValidateCSRFToken(r.Context(), info.Token, supplied); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
