package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/txn2/memsession/pkg/pipeline"
	"github.com/txn2/memsession/pkg/session"
)

// messageKey is the session key holding the last posted message.
const messageKey = "Message"

// maxFormBytes caps the size of a posted form.
const maxFormBytes = 64 << 10

var messagePage = template.Must(template.New("main").Parse(`<!DOCTYPE html>
<html>
<head><title>memsession</title></head>
<body>
{{if .HasMessage}}<p>Your message: <strong>{{.Message}}</strong></p>{{else}}<p>No message in session.</p>{{end}}
<form method="post" action="/">
<input type="text" name="message">
<button type="submit">Save</button>
</form>
</body>
</html>
`))

type messageView struct {
	HasMessage bool
	Message    string
}

// limitBody caps the request body before the handler parses it.
func limitBody(c *pipeline.Context) http.Handler {
	c.Request.Body = http.MaxBytesReader(c.Response, c.Request.Body, maxFormBytes)
	return nil
}

// noStore keeps shared caches from storing per-session pages.
func noStore(c *pipeline.Context) {
	c.Response.Header().Set("Cache-Control", "no-store")
}

func handleGetMessage(w http.ResponseWriter, r *http.Request) {
	var view messageView
	if sess := session.FromContext(r.Context()); sess != nil {
		if v, ok := sess.Get(messageKey); ok {
			view.HasMessage = true
			view.Message, _ = v.(string)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := messagePage.Execute(w, view); err != nil {
		slog.Error("rendering message page failed", "error", err)
	}
}

func handlePostMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	message := r.PostForm.Get("message")
	if sess := session.FromContext(r.Context()); sess != nil && strings.TrimSpace(message) != "" {
		sess.Set(messageKey, message)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
