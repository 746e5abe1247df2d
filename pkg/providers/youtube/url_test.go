package youtube

import (
	"testing"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s":            "dQw4w9WgXcQ",
		"http://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ":   "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                             "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/abc_DEF-123":               "abc_DEF-123",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0": "dQw4w9WgXcQ",
		"https://www.youtube.com/live/dQw4w9WgXcQ/extra":           "dQw4w9WgXcQ",
	}

	for raw, want := range valid {
		id, err := VideoID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, id, raw)
	}

	invalid := []string{
		"",
		"not a url",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/123456",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/channel/UC123",
		"https://youtu.be/",
	}

	for _, raw := range invalid {
		_, err := VideoID(raw)
		assert.True(t, errs.IsValidationError(err), raw)
	}
}
