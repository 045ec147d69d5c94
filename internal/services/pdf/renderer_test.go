package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestRenderMarkdown(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	tests := []struct {
		name     string
		markdown string
	}{
		{
			name:     "basic digest",
			markdown: "# Daily Digest\n\n3 announcements analyzed.\n\n- Acme Ltd: quarterly results\n- Beta Corp: order win",
		},
		{
			name:     "empty markdown",
			markdown: "",
		},
		{
			name: "digest with table",
			markdown: `# High Priority

| Company | Type | Urgency |
|---------|------|---------|
| Acme Ltd | quarterly_results | 0.82 |
| Beta Corp | order_win | 0.74 |

End of digest.`,
		},
		{
			name:     "emphasis",
			markdown: "Normal **bold** *italic* ***both***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := renderer.RenderMarkdown(tt.markdown, "Announcement Digest")
			assert.NoError(t, err)
			assert.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestRenderMarkdownTableContent(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	markdown := `
# Alerts

| ID | Company | Priority | Headline |
|----|---------|----------|----------|
| rec_1 | Acme Ltd | high | Q1 net profit up 45% to Rs 500 crore |
| rec_2 | Beta Corp | medium | Receives order worth Rs 120 crore |

2 alerts issued.
`
	pdfBytes, err := renderer.RenderMarkdown(markdown, "Alert Report")
	assert.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 500)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}
