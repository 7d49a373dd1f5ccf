package web

import (
	"fmt"
	"net/http"
)

func (s *TopicRoomsApp) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Printf("panic: %v", panicError)
				w.Header().Set("Connection", "close")
				s.renderError(w, NewInternalServerError(panicError))
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware decodes the session cookie, if any, and stores the
// resulting identity in the request context. Requests without a valid
// session pass through anonymously.
func (s *TopicRoomsApp) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCookie, err := r.Cookie(tokenCookieKey)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.extractSessionFromToken(tokenCookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithSessionUser(r.Context(), user)
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLogin redirects anonymous requests to the login page.
func (s *TopicRoomsApp) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionUserFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}

		next(w, r)
	}
}
