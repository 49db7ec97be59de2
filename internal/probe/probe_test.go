package probe

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkatsube/picc/internal/config"
)

func TestCheckURL(t *testing.T) {
	cases := []struct {
		url          string
		allowPrivate bool
		ok           bool
	}{
		{"https://example.com/a.png", false, true},
		{"https://example.com/a.png", true, true},
		{"http://example.com/a.png", true, false},
		{"http://localhost:3001/a.png", true, true},
		{"http://localhost:3001/a.png", false, false},
		{"http://127.0.0.1/a.png", true, true},
		{"http://192.168.1.10/a.png", true, true},
		{"http://10.0.0.5/a.png", true, true},
		{"http://8.8.8.8/a.png", true, false},
		{"ftp://example.com/a.png", true, false},
	}
	for _, c := range cases {
		err := CheckURL(c.url, c.allowPrivate)
		if c.ok {
			assert.NoError(t, err, c.url)
		} else {
			assert.Error(t, err, c.url)
		}
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func testProber() *Prober {
	return New(config.ProbeConfig{Timeout: 2, MaxBodyMB: 5}, nil)
}

func TestMeasure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 400, 300))
	}))
	defer srv.Close()

	d, err := testProber().Measure(context.Background(), srv.URL+"/asset.png")
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 400, Height: 300}, d)
}

func TestMeasureRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	_, err := testProber().Measure(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestMeasureRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testProber().Measure(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestMeasureUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testProber().Measure(context.Background(), url)
	assert.Error(t, err)
}

func TestParseDims(t *testing.T) {
	d, ok := parseDims("400x300")
	assert.True(t, ok)
	assert.Equal(t, Dimensions{400, 300}, d)

	_, ok = parseDims("garbage")
	assert.False(t, ok)

	_, ok = parseDims("0x10")
	assert.False(t, ok)
}
