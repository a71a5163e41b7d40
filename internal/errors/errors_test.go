package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"missing config", "E100", "components.json not found", CategoryConfig},
		{"missing repo", "E110", "Zoo repository not found", CategoryRepo},
		{"unknown component", "E120", "Component not found", CategoryComponent},
		{"unknown code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
		})
	}
}

func TestZooError_Error(t *testing.T) {
	assert.Equal(t, "E110: Zoo repository not found", New("E110").Error())
	assert.Equal(t, "E120: Component not found (button-x)", New("E120").WithDetail("button-x").Error())
	assert.Equal(t, "plain", (&ZooError{Message: "plain"}).Error())
}

func TestZooError_Unwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := New("E121").Wrap(cause)

	assert.True(t, stderrors.Is(err, os.ErrNotExist))
	assert.Equal(t, cause.Error(), err.Detail, "Wrap should fill an empty detail")

	wrapped := fmt.Errorf("copy: %w", err)
	var ze *ZooError
	require.True(t, stderrors.As(wrapped, &ze))
	assert.Equal(t, "E121", ze.Code)
}

func TestHasCode(t *testing.T) {
	inner := New("E121")
	outer := New("E122").Wrap(inner)

	assert.True(t, HasCode(outer, "E122"))
	assert.True(t, HasCode(outer, "E121"))
	assert.False(t, HasCode(outer, "E100"))
	assert.False(t, HasCode(stderrors.New("boom"), "E100"))
	assert.False(t, HasCode(nil, "E100"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E100"))

	ze := New("E110")
	assert.Same(t, ze, FromError(ze, "E100"))

	converted := FromError(stderrors.New("disk full"), "E122")
	assert.Equal(t, "E122", converted.Code)
	assert.Equal(t, "disk full", converted.Detail)
}

func TestWithLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	content := "components:\n  - name: Button\n    type: atom\n    path: atoms/button\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	err := New("E130").WithLocation(path, 2, 11)

	require.NotNil(t, err.Location)
	assert.Equal(t, path+":2:11", err.Location.String())
	assert.NotEmpty(t, err.Context)
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E100").WithDetail("No components.json in /tmp/app").Format()

	assert.Contains(t, out, "ERROR E100: components.json not found")
	assert.Contains(t, out, "No components.json in /tmp/app")
	assert.Contains(t, out, "Hint: Run 'zoo init'")
}

func TestFormatCompact(t *testing.T) {
	err := New("E130").WithDetail("name must be kebab-case")
	err.Location = &Location{File: "components.yaml", Line: 4}

	assert.Equal(t, "components.yaml:4: E130: Invalid component catalog: name must be kebab-case", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(New("E110").FormatJSON()), &decoded))

	assert.Equal(t, "E110", decoded["code"])
	assert.Equal(t, "repo", decoded["category"])
	assert.Contains(t, decoded["hint"], "ZOO_REPO_PATH")
}

func TestFprintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	FprintError(&buf, fmt.Errorf("add: %w", New("E120").WithDetail("'nope'")))
	assert.Contains(t, buf.String(), "ERROR E120: Component not found")

	buf.Reset()
	FprintError(&buf, stderrors.New("something else"))
	assert.Contains(t, buf.String(), "ERROR: something else")
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 10))
	assert.Equal(t, []string{"short"}, wrapText("short", 10))

	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Len(t, lines, 3)
}

func TestAllCodesHaveMessages(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		require.True(t, ok)
		assert.NotEmpty(t, tmpl.Message, code)
		assert.NotEmpty(t, tmpl.Category, code)
	}
}
