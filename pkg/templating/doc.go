/*
Package templating renders html/template files filled with placeholder text.

A TemplateManager loads every *.tmpl.html page and *.part.html partial from a
directory and exposes a function map backed by a lorem.Generator:

	{{loremIncipit}}
	{{range loremParagraphs 3}}<p>{{.}}</p>{{end}}
	<h1>{{title (loremWords 4)}}</h1>
	<p>{{truncate 80 loremSentence}}</p>
	<span>{{loremWord 7}}</span>

Counts passed to the generating functions are capped by TemplateConfig. Call
Watch to reload templates whenever files in the directory change.
*/
package templating
