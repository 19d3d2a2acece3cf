package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Citation analysis</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; }
td:not(:first-child) { text-align: right; }
</style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// HTML renders a markdown report as a standalone HTML page.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(htmlHeader)
	if err := renderer.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	buf.WriteString(htmlFooter)
	return buf.Bytes(), nil
}
