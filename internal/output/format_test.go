// Package output tests terminal formatting helpers.
// Related: internal/output/format.go
// Tags: output, formatting, color

package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrinters(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		print func(*bytes.Buffer)
		want  string
	}{
		"success": {
			print: func(b *bytes.Buffer) { PrintSuccess(b, "Saved") },
			want:  "✓ Saved\n",
		},
		"success with path": {
			print: func(b *bytes.Buffer) { PrintSuccess(b, "Created", ".github/instructions/x.md") },
			want:  "✓ Created .github/instructions/x.md\n",
		},
		"skipped": {
			print: func(b *bytes.Buffer) { PrintSkipped(b, "nothing to do") },
			want:  "- nothing to do\n",
		},
		"warning": {
			print: func(b *bytes.Buffer) { PrintWarning(b, "careful") },
			want:  "Warning: careful\n",
		},
		"field": {
			print: func(b *bytes.Buffer) { PrintField(b, "State", "custom") },
			want:  "  State:             custom\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.print(&buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintSection(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintSection(&buf, "Rules")
	assert.Contains(t, buf.String(), "Rules ───")
}

func TestYesNoAndCheck(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "yes", YesNo(true))
	assert.Equal(t, "no", YesNo(false))
	assert.Equal(t, "✓", Check(true))
	assert.Equal(t, "✗", Check(false))
}

func TestGetTerminalWidth(t *testing.T) {
	t.Parallel()

	assert.Positive(t, GetTerminalWidth())
}
