// Package render resolves and renders caller-referenced HTML templates.
//
// Template identifiers are restricted to a flat name grammar before any file
// resolution happens, which is the gateway's defense against path traversal.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// namePattern is the full identifier grammar: letters, digits, hyphen,
// underscore. No separators, no dots, so no traversal and no extension.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrNotFound signals that the referenced template file does not exist.
var ErrNotFound = errors.New("template not found")

// ErrInvalid signals a template that failed to parse or execute.
var ErrInvalid = errors.New("error processing template")

// InvalidNameError reports an identifier that failed the name grammar.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("Invalid template name: %s", e.Name)
}

// Renderer loads templates from a directory and renders them with
// caller-supplied data. Parsed templates are cached when cache is enabled.
type Renderer struct {
	dir   string
	cache bool

	mu        sync.RWMutex
	templates map[string]*template.Template
}

// New creates a Renderer over the given template directory, creating the
// directory if it does not exist yet.
func New(dir string, cache bool) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}

	return &Renderer{
		dir:       dir,
		cache:     cache,
		templates: make(map[string]*template.Template),
	}, nil
}

// Render renders the named template with the given variables. The name is
// checked against the identifier grammar before any file access; data may be
// nil. Failures are classified as *InvalidNameError, ErrNotFound, or
// ErrInvalid so callers can map them to responses without inspecting paths.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	if !namePattern.MatchString(name) {
		return "", &InvalidNameError{Name: name}
	}

	tpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	if data == nil {
		data = map[string]any{}
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalid, name)
	}

	return buf.String(), nil
}

// lookup returns the parsed template for name, consulting the cache first.
func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.cache {
		r.mu.RLock()
		tpl, ok := r.templates[name]
		r.mu.RUnlock()
		if ok {
			return tpl, nil
		}
	}

	tpl, err := r.parseFile(name)
	if err != nil {
		return nil, err
	}

	if r.cache {
		r.mu.Lock()
		r.templates[name] = tpl
		r.mu.Unlock()
	}

	return tpl, nil
}

// parseFile reads and parses <dir>/<name>.html.
func (r *Renderer) parseFile(name string) (*template.Template, error) {
	content, err := os.ReadFile(filepath.Join(r.dir, name+".html"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, name)
	}

	tpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, name)
	}

	return tpl, nil
}
