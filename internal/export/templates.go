package export

// pageTemplate is the Go html/template for each prompt page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Name}} — promptforge</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
    .labels span { display: inline-block; background: #eef2ff; color: #3730a3; border-radius: 1rem; padding: 0.1rem 0.7rem; margin-right: 0.4rem; font-size: 0.85rem; }
    pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow-x: auto; }
    details { margin-top: 2rem; border-top: 1px solid #d0d7de; padding-top: 1rem; }
    a { color: #0969da; }
  </style>
</head>
<body>
  <p><a href="index.html">&larr; all prompts</a></p>
  <h1>{{.Name}}</h1>
  {{if .Labels}}<p class="labels">{{range .Labels}}<span>{{.}}</span>{{end}}</p>{{end}}
  <article>
    {{.Content}}
  </article>
  {{if .Original}}
  <details>
    <summary>Original (before refinement)</summary>
    {{.Original}}
  </details>
  {{end}}
</body>
</html>`

// indexTemplate is the Go html/template for the library index page.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Prompt Library — promptforge</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
    li { margin: 0.5rem 0; }
    .labels span { background: #eef2ff; color: #3730a3; border-radius: 1rem; padding: 0.1rem 0.7rem; margin-left: 0.4rem; font-size: 0.85rem; }
    a { color: #0969da; }
  </style>
</head>
<body>
  <h1>Prompt Library</h1>
  {{if .Prompts}}
  <ul>
    {{range .Prompts}}
    <li><a href="{{.Name}}.html">{{.Name}}</a><span class="labels">{{range .Labels}}<span>{{.}}</span>{{end}}</span></li>
    {{end}}
  </ul>
  {{else}}
  <p>No prompts saved yet.</p>
  {{end}}
</body>
</html>`
