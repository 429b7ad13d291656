package ci

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FuncMap holds the helpers available to backend templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"quote":  Quote,
		"indent": Indent,
		"toYAML": ToYAML,
	}
}

// ParseTemplates parses the templates matching patterns in fsys with the
// helpers from FuncMap. Missing keys are errors.
func ParseTemplates(fsys fs.FS, patterns ...string) (*template.Template, error) {
	return template.New("").
		Funcs(FuncMap()).
		Option("missingkey=error").
		ParseFS(fsys, patterns...)
}

// Execute runs the named template and reports failures as ErrRender.
// Trailing newlines are dropped; the caller terminates the body.
func Execute(tmpl *template.Template, name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, errors.ErrRender, "failed to execute template %s", name)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Quote renders s as a double quoted YAML scalar. JSON string syntax is a
// subset of YAML's, and it never spans lines. Invalid UTF-8 is an ErrRender
// error rather than being replaced with U+FFFD.
func Quote(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errors.Newf(errors.ErrRender, "cannot quote %q: not valid UTF-8", s)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// ToYAML marshals v as a YAML block without the trailing newline.
func ToYAML(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// checkYAML parses a rendered body so a template defect never reaches disk.
func checkYAML(body string) error {
	var doc yaml.Node
	return yaml.Unmarshal([]byte(body), &doc)
}
