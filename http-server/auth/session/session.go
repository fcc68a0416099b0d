package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"roxat-report/internal/middleware/auth"
)

type Response struct {
	User      json.RawMessage `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
}

// Current returns the logged-in user as the order API described it at login.
func Current() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		user := sess.User
		if len(user) == 0 {
			user = json.RawMessage("null")
		}

		render.JSON(w, r, Response{User: user, CreatedAt: sess.CreatedAt})
	}
}
