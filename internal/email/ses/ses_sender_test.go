package ses

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"voxform/internal/domain"
)

func TestConfirmationBodies(t *testing.T) {
	sub := &domain.Submission{
		Name:    "John Doe",
		Email:   "john@example.com",
		Phone:   "555-123-4567",
		Address: "12 <Oak> Lane",
	}

	text := BuildConfirmationText(sub)
	assert.True(t, strings.HasPrefix(text, "Hi John Doe,"))
	assert.Contains(t, text, "Phone Number: 555-123-4567")

	body := buildConfirmationHTML(sub)
	assert.Contains(t, body, "12 &lt;Oak&gt; Lane")
	assert.NotContains(t, body, "<Oak>")
}
