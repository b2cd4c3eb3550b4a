// Package web holds the site's html templates and static assets, embedded in
// the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

const (
	INDEX_PAGE    = "index.html"
	RESUME_PAGE   = "resume.html"
	PROJECTS_PAGE = "projects.html"
	CONTACT_PAGE  = "contact.html"
)

var pages = []string{INDEX_PAGE, RESUME_PAGE, PROJECTS_PAGE, CONTACT_PAGE}

// all: is needed so the _partials directory is embedded too
//
//go:embed all:templates static
var assets embed.FS

// Templates parses every page together with the shared partials. The map is
// keyed by page name, e.g. "contact.html".
func Templates() (map[string]*template.Template, error) {
	templates := map[string]*template.Template{}

	for _, name := range pages {
		tmpl, err := template.New(name).ParseFS(assets, "templates/"+name, "templates/_partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("couldn't parse template %q: %v", name, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

// Static serves the embedded static directory. Mount it under "/static/".
func Static() http.Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		// "static" is embedded above, so Sub cannot fail
		panic(err)
	}

	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}
