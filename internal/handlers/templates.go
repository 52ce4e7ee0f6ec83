package handlers

import (
	"bytes"
	"html/template"
)

var notFoundPage = template.Must(template.New("not-found").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>QR Code Not Found</title>
</head>
<body>
<main>
<h1>QR Code Not Found</h1>
<p>This QR code does not exist.</p>
<p>Code: <code>{{.Code}}</code></p>
</main>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Error</title>
</head>
<body>
<main>
<h1>Something went wrong</h1>
<p>Please try again later.</p>
</main>
</body>
</html>
`))

func renderPage(tmpl *template.Template, data any) []byte {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return []byte("Something went wrong")
	}

	return buf.Bytes()
}
