package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates lists the page templates rendered inside the layout.
var pageTemplates = []string{
	"card.html",
	"index.html",
}

// Engine loads and renders the embedded page templates. Each page is
// parsed together with the layout so the layout wraps every page.
type Engine struct {
	templates map[string]*template.Template
}

// templateFuncs returns the function map available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// rawHTML marks archived comment markup as already-rendered HTML.
		// Comment bodies were captured as Gatherer rendered them and the
		// link rewriter only ever touches the one known anchor form.
		"rawHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// NewEngine parses all embedded templates and returns a ready engine.
func NewEngine() (*Engine, error) {
	engine := &Engine{
		templates: make(map[string]*template.Template, len(pageTemplates)),
	}

	funcs := templateFuncs()
	for _, page := range pageTemplates {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		engine.templates[page] = t
	}

	return engine, nil
}

// Render executes the named page template with the given data.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
