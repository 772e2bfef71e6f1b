// Package templates holds the HTML pages served to the browser.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"
)

//go:embed *.html
var files embed.FS

// Render executes the named page, laid out inside layout.html.
func Render(w io.Writer, name string, data any) error {
	tmpl, err := template.ParseFS(files, "layout.html", name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Write renders the page fully before sending status, so a template error still yields a clean 500.
func Write(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := Render(&buf, name, data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
