package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html>
<head><title>Example Domain</title><style>body { margin: 0 }</style></head>
<body>
<nav><li>Home</li><li>About</li></nav>
<h1>Example Domain</h1>
<p>This domain is for use in illustrative examples.</p>
<h2>Details</h2>
<ul><li>First point</li><li>Second point</li></ul>
<pre><code>fmt.Println("hi")</code></pre>
<script>alert("nope")</script>
<footer><p>Copyright</p></footer>
</body>
</html>`

func TestMarkdown(t *testing.T) {
	md, err := Markdown(samplePage)
	require.NoError(t, err)

	assert.Contains(t, md, "# Example Domain")
	assert.Contains(t, md, "## Details")
	assert.Contains(t, md, "This domain is for use in illustrative examples.")
	assert.Contains(t, md, "- First point")
	assert.Contains(t, md, "- Second point")
	assert.Contains(t, md, "```\nfmt.Println(\"hi\")\n```")
}

func TestMarkdown_RemovesChrome(t *testing.T) {
	md, err := Markdown(samplePage)
	require.NoError(t, err)

	assert.NotContains(t, md, "alert")
	assert.NotContains(t, md, "margin: 0")
	assert.NotContains(t, md, "Copyright")
	assert.NotContains(t, md, "- Home")
}

func TestMarkdown_CodeInsidePreNotDuplicated(t *testing.T) {
	md, err := Markdown(samplePage)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(md, `fmt.Println("hi")`))
}

func TestMarkdown_EmptyDocument(t *testing.T) {
	md, err := Markdown("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, md)
}
