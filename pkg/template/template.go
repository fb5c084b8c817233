package template

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

var (
	mu    sync.Mutex
	cache = map[string]*template.Template{}
)

// Parse renders a prompt template with the given fields. Parsed templates are
// cached by their text.
func Parse(text string, fields any) (string, error) {
	mu.Lock()
	tmpl, ok := cache[text]
	if !ok {
		var err error
		tmpl, err = template.New("").Parse(text)
		if err != nil {
			mu.Unlock()
			return "", fmt.Errorf("parse: %w", err)
		}
		cache[text] = tmpl
	}
	mu.Unlock()

	var result bytes.Buffer
	err := tmpl.Execute(&result, fields)
	if err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}

	return result.String(), nil
}
