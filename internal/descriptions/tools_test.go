package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for name, desc := range ToolDescriptions {
		assert.Equal(t, desc, GetToolDescription(name), name)
		assert.NotEmpty(t, desc, name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}
