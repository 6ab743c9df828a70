package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/pkg/auth"
)

// Harness is what scenarios run against.
type Harness struct {
	Handler http.Handler

	// Sign mints the session credential for steps with "as" set.
	Sign func(email string) (string, error)

	// Mailbox, when set, is drained after every step and checked against
	// the step's "mails".
	Mailbox *Mailbox
}

// Run executes one scenario file as a subtest.
func Run(t *testing.T, h Harness, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	require.NoError(t, err)
	t.Run(s.Name, func(t *testing.T) { h.run(t, s) })
}

// RunDir runs every *.json file in dir as its own subtest.
func RunDir(t *testing.T, h Harness, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, entries, "testkit: no scenario files found in %q", dir)

	for _, path := range entries {
		s, err := LoadScenario(path)
		if !assert.NoError(t, err) {
			continue
		}
		t.Run(s.Name, func(t *testing.T) { h.run(t, s) })
	}
}

func (h Harness) run(t *testing.T, s *Scenario) {
	vars := map[string]string{}
	if h.Mailbox != nil {
		h.Mailbox.Take()
	}

	for _, st := range s.Steps {
		// A failed step leaves later steps without their captures.
		if !t.Run(st.Name, func(t *testing.T) { h.step(t, st, vars) }) {
			return
		}
	}
}

func (h Harness) step(t *testing.T, st Step, vars map[string]string) {
	var body io.Reader
	if len(st.Body) > 0 {
		body = bytes.NewReader([]byte(expand(string(st.Body), vars)))
	}

	req := httptest.NewRequest(st.Method, expand(st.URL, vars), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range st.Header {
		req.Header.Set(k, expand(v, vars))
	}
	if st.As != "" {
		require.NotNil(t, h.Sign, "step signs in but the harness has no Sign")
		token, err := h.Sign(st.As)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, req)

	require.Equal(t, st.ExpectedCode, rec.Code, "body: %s", rec.Body.String())

	if len(st.Expect) > 0 || len(st.Absent) > 0 || len(st.Capture) > 0 {
		var got any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), "body: %s", rec.Body.String())

		if len(st.Expect) > 0 {
			AssertSubset(t, []byte(expand(string(st.Expect), vars)), got)
		}
		for _, path := range st.Absent {
			_, ok := Lookup(got, path)
			assert.False(t, ok, "%q should be absent in %s", path, rec.Body.String())
		}
		for name, path := range st.Capture {
			v, ok := Lookup(got, path)
			require.True(t, ok, "capture %q: no %q in %s", name, path, rec.Body.String())
			vars[name] = scalar(v)
		}
	}

	if h.Mailbox != nil {
		mails := h.Mailbox.Take()
		if st.Mails != nil {
			subjects := make([]string, 0, len(mails))
			for _, m := range mails {
				if m.Subject != "" {
					subjects = append(subjects, m.Subject)
				}
			}
			assert.ElementsMatch(t, st.Mails, subjects)
		}
	}
}

// expand replaces {{name}} with captured values.
func expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
