package handlers

import "html/template"

const galleryPage = `<!DOCTYPE html>
<html>
<head>
<title>Image Gallery</title>
<style>
    body { background-color: LIGHTBLUE; font-family: Arial; }
</style>
</head>
<body>
<form method="post" enctype="multipart/form-data" action="/upload">
    <label for="file">Choose file to upload</label>
    <input type="file" id="file" name="form_file" accept="image/jpeg"/>
    <button>Submit</button>
</form>
<h2>Uploaded Images</h2>
<ul>
{{- range .Entries}}
    <li><img src="/image/{{.Name}}" alt="Uploaded Image" width="200"></li>
    <li><strong>Title:</strong> {{.Record.Title}}</li>
    <li><strong>Description:</strong> {{.Record.Description}}</li>
    <li><form action="/download/{{.Name}}" method="GET">
        <button type="submit">Download</button></form></li>
{{- end}}
</ul>
</body>
</html>
`

// GalleryTemplate returns the HTML template set used by the gallery routes.
func GalleryTemplate() *template.Template {
	return template.Must(template.New("gallery").Parse(galleryPage))
}
