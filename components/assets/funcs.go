package assets

import "html/template"

// FuncMap exposes the resolver to html/template pages:
//
//	<script type="module" src="{{ static "js/project.js" }}"></script>
func (r *Resolver) FuncMap() template.FuncMap {
	return template.FuncMap{
		"static":     r.Static,
		"staticCSS":  r.CSS,
		"viteClient": r.ViteClientURL,
		"isDev":      r.IsDev,
	}
}
