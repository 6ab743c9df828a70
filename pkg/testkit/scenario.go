// Package testkit drives the HTTP surface from JSON scenario files.
//
// A scenario is an ordered list of steps fired against one handler, so
// later steps see the state earlier ones left behind:
//
//	{
//	  "name": "seller lists a plant",
//	  "steps": [
//	    {"method": "POST", "url": "/plants", "as": "seller@plantnet.dev",
//	     "body": {"name": "Fern", "quantity": 3}, "expectedCode": 201,
//	     "capture": {"plant": "insertedId"}},
//	    {"url": "/plants/{{plant}}", "expectedCode": 200,
//	     "expect": {"name": "Fern", "quantity": 3}}
//	  ]
//	}
//
// Usage:
//
//	testkit.RunDir(t, testkit.Harness{Handler: h, Sign: issuer.Sign}, "testdata")
package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// Step is a single request and what it must produce.
type Step struct {
	Name   string            `json:"name"`
	Method string            `json:"method"`
	URL    string            `json:"url"`
	As     string            `json:"as"` // sign the request in as this email
	Body   json.RawMessage   `json:"body"`
	Header map[string]string `json:"headers"`

	ExpectedCode int `json:"expectedCode"`

	// Expect is matched as a subset: every key present must match, extra
	// keys in the response are ignored. Arrays must match in length.
	Expect json.RawMessage `json:"expect"`

	// Absent lists dotted paths that must not exist in the response.
	Absent []string `json:"absent"`

	// Capture stores response values for later {{name}} substitution.
	Capture map[string]string `json:"capture"`

	// Mails lists the subjects the step must have queued, in any order.
	Mails []string `json:"mails"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		st.Method = strings.ToUpper(st.Method)
		if st.Method == "" {
			st.Method = http.MethodGet
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("%02d %s %s", i+1, st.Method, st.URL)
		}
	}
	return nil
}

// LoadAllFromDir loads every *.json file in dir. Files that fail to parse
// are returned as errors alongside the ones that loaded.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}
