package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := map[string]struct {
		input      string
		wantHeader string
		wantBody   string
		wantOK     bool
	}{
		"unix": {
			input:      "---\nname: x\n---\nbody\n",
			wantHeader: "name: x",
			wantBody:   "body\n",
			wantOK:     true,
		},
		"windows": {
			input:      "---\r\nname: x\r\ndescription: y\r\n---\r\nbody",
			wantHeader: "name: x\ndescription: y",
			wantBody:   "body",
			wantOK:     true,
		},
		"empty header": {
			input:      "---\n---\nbody",
			wantHeader: "",
			wantBody:   "body",
			wantOK:     true,
		},
		"no header": {
			input:    "# Title\n",
			wantBody: "# Title\n",
		},
		"unclosed": {
			input:    "---\nname: x\nbody",
			wantBody: "---\nname: x\nbody",
		},
		"delimiter prefix in body is not a close": {
			input:      "---\na: 1\n----\nb: 2\n---\nrest",
			wantHeader: "a: 1\n----\nb: 2",
			wantBody:   "rest",
			wantOK:     true,
		},
		"header at end of file": {
			input:      "---\na: 1\n---",
			wantHeader: "a: 1",
			wantOK:     true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			header, body, ok := Split([]byte(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHeader, string(header))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`---
name: pdf
description: "  Work with PDF files  "
license: MIT
metadata:
  version: 1.2
tools: [read, edit]
empty: ""
---
# PDF
`))
	require.NoError(t, err)
	assert.True(t, doc.HasFrontmatter)
	assert.Equal(t, "pdf", doc.String("name"))
	assert.Equal(t, "Work with PDF files", doc.String("description"))
	assert.Equal(t, "1.2", doc.String("metadata.version"))
	assert.True(t, doc.Has("metadata.version"))
	assert.True(t, doc.Has("tools"))
	assert.Equal(t, "", doc.String("tools"))
	assert.False(t, doc.Has("empty"))
	assert.False(t, doc.Has("missing"))
	assert.False(t, doc.Has("name.nested"))
	assert.Equal(t, "# PDF\n", doc.Body)
}

func TestParseNoHeader(t *testing.T) {
	doc, err := Parse([]byte("plain"))
	require.NoError(t, err)
	assert.False(t, doc.HasFrontmatter)
	assert.NotNil(t, doc.Fields)
	assert.Equal(t, "plain", doc.Body)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\nname: [unclosed\n---\n"))
	assert.Error(t, err)
}
