package main

import (
	"html/template"
	"net/http"
)

type taskListData struct {
	Tasks  []Task
	Filter string
}

type taskFormData struct {
	Name   string
	Errors map[string]string
}

var templates = template.Must(template.New("").Parse(`
{{define "layout"}}<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Tasks</title>
<script src="https://cdn.jsdelivr.net/npm/unpoly@3/unpoly.min.js"></script>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/unpoly@3/unpoly.min.css">
</head>
<body>
<main>{{template "content" .}}</main>
</body>
</html>{{end}}

{{define "page"}}{{template "layout" .}}{{end}}
{{define "content"}}
{{template "tasks" .}}
<p>
<a href="/tasks/new" up-layer="new modal">New task</a>
<a href="/?filter=open" up-target="#tasks">Open only</a>
<a href="/?filter=all" up-target="#tasks">All</a>
</p>
{{end}}

{{define "tasks"}}<div id="tasks">
<ul>
{{range .Tasks}}<li{{if .Done}} class="done"{{end}}>
<form method="post" action="/tasks/{{.ID}}/toggle" up-target="#tasks"><button>{{.Name}}</button></form>
</li>{{end}}
</ul>
</div>{{end}}

{{define "form"}}<form id="task-form" method="post" action="/tasks" up-target="#task-form" up-validate>
<label>Name <input name="name" value="{{.Name}}"></label>
{{with .Errors}}{{with index . "name"}}<span class="error">{{.}}</span>{{end}}{{end}}
<button>Create</button>
</form>{{end}}

{{define "formPage"}}<!doctype html>
<html>
<head><meta charset="utf-8"><title>New task</title></head>
<body><main>{{template "form" .}}</main></body>
</html>{{end}}
`))

func (s *server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Could not render template")
	}
}
