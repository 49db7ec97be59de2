package thumbs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyIsStablePerURL(t *testing.T) {
	a := ThumbJob{ImageURL: "https://example.com/a.png"}
	b := ThumbJob{ImageURL: "https://example.com/a.png"}
	c := ThumbJob{ImageURL: "https://example.com/b.png"}

	assert.Equal(t, a.ObjectKey(), b.ObjectKey())
	assert.NotEqual(t, a.ObjectKey(), c.ObjectKey())
	assert.True(t, strings.HasPrefix(a.ObjectKey(), "thumbs/"))
	assert.True(t, strings.HasSuffix(a.ObjectKey(), ".webp"))
}

func TestObjectKeyOverride(t *testing.T) {
	j := ThumbJob{ImageURL: "https://example.com/a.png", Key: "custom.webp"}
	assert.Equal(t, "custom.webp", j.ObjectKey())
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, toInt("3"))
	assert.Equal(t, 4, toInt(int64(4)))
	assert.Equal(t, 5, toInt(5))
	assert.Equal(t, 0, toInt(nil))
}
