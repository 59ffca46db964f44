package session

import "net/http"

// CookieName is the cookie that carries the session identifier.
const CookieName = "_nc"

// CookieOptions controls the attributes of the issued session cookie.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// normalize fills in defaults.
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// cookie builds the session cookie for id. No expiry is set, so browsers
// drop it when they close; the server side expires entries on its own.
func (o CookieOptions) cookie(id string) *http.Cookie {
	o = o.normalize()
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     o.Path,
		Domain:   o.Domain,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// requestID returns the identifier presented by r, or "" when there is none.
func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
