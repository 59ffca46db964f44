package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineTestPath = "/"

type ctxKey struct{}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func TestPipeline_HookOrder(t *testing.T) {
	p := New()
	var order []string

	p.AddBefore(func(_ *Context) http.Handler {
		order = append(order, "before-2")
		return nil
	})
	p.AddBeforeToStart(func(_ *Context) http.Handler {
		order = append(order, "before-1")
		return nil
	})
	p.AddAfterToStart(func(_ *Context) {
		order = append(order, "after-2")
	})
	p.AddAfterToStart(func(_ *Context) {
		order = append(order, "after-1")
	})
	p.AddAfterToEnd(func(_ *Context) {
		order = append(order, "after-3")
	})

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	p.Handler(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))

	assert.Equal(t, []string{"before-1", "before-2", "handler", "after-1", "after-2", "after-3"}, order)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPipeline_ShortCircuit(t *testing.T) {
	p := New()
	afterRan := false
	secondBeforeRan := false

	p.AddBefore(func(_ *Context) http.Handler {
		return http.RedirectHandler("/elsewhere", http.StatusSeeOther)
	})
	p.AddBefore(func(_ *Context) http.Handler {
		secondBeforeRan = true
		return nil
	})
	p.AddAfterToEnd(func(_ *Context) {
		afterRan = true
	})

	w := httptest.NewRecorder()
	p.Handler(okHandler("handler")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/elsewhere", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "handler")
	assert.False(t, secondBeforeRan, "hooks after a short-circuit should not run")
	assert.True(t, afterRan, "after hooks should run after a short-circuit")
}

func TestPipeline_BeforeHookReplacesRequest(t *testing.T) {
	p := New()
	p.AddBefore(func(c *Context) http.Handler {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, "attached"))
		return nil
	})

	var seenByHandler, seenByAfter any
	p.AddAfterToEnd(func(c *Context) {
		seenByAfter = c.Request.Context().Value(ctxKey{})
	})
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenByHandler = r.Context().Value(ctxKey{})
	})

	p.Handler(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))

	assert.Equal(t, "attached", seenByHandler)
	assert.Equal(t, "attached", seenByAfter)
}

func TestPipeline_AfterHookCanSetCookie(t *testing.T) {
	p := New()
	p.AddAfterToEnd(func(c *Context) {
		http.SetCookie(c.Response, &http.Cookie{Name: "late", Value: "value"})
	})

	w := httptest.NewRecorder()
	p.Handler(okHandler("body")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))

	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, "late", w.Result().Cookies()[0].Name)
	assert.Equal(t, "value", w.Result().Cookies()[0].Value)
	assert.Equal(t, "body", w.Body.String())
}

func TestResponse_Defaults(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, NewResponse().Send(w))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header())
}

func TestResponse_FirstStatusWins(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  int
	}{
		{"repeated WriteHeader", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusCreated)
			w.WriteHeader(http.StatusInternalServerError)
		}, http.StatusCreated},
		{"Write commits 200", func(w http.ResponseWriter) {
			_, _ = w.Write([]byte("partial"))
			w.WriteHeader(http.StatusInternalServerError)
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { tt.write(w) })

			buffered := httptest.NewRecorder()
			p.Handler(inner).ServeHTTP(buffered, httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))
			direct := httptest.NewRecorder()
			inner.ServeHTTP(direct, httptest.NewRequest(http.MethodGet, pipelineTestPath, http.NoBody))

			assert.Equal(t, tt.want, buffered.Code)
			assert.Equal(t, direct.Code, buffered.Code, "status should match an unbuffered writer")
		})
	}
}

func TestResponse_Send(t *testing.T) {
	r := NewResponse()
	r.Header().Set("Content-Type", "text/plain")
	r.WriteHeader(http.StatusAccepted)
	_, err := r.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = r.Write([]byte("world"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Send(w))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, "hello world", w.Body.String())
}

func TestResponse_SetCookie(t *testing.T) {
	r := NewResponse()
	http.SetCookie(r, &http.Cookie{Name: "_nc", Value: "abc"})

	got := r.Header().Values("Set-Cookie")
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "_nc=abc"))
}
