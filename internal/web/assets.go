package web

import _ "embed"

// Static assets are inlined into the page: the UI is one document and a
// separate asset pipeline would be overkill.

//go:embed static/app.css
var appCSS string

//go:embed static/app.js
var appJS string
