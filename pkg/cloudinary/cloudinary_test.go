package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildOptimizedImageURL(t *testing.T) {
	url := BuildOptimizedImageURL("demo", "sygil/avatars/7/img_abc", 256)
	require.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_256,c_fill/sygil/avatars/7/img_abc",
		url)

	// Non-positive widths fall back to the default.
	url = BuildOptimizedImageURL("demo", "img_abc", 0)
	require.Contains(t, url, "w_800")
}

func TestClientImageURL(t *testing.T) {
	c := &clientImpl{cloudName: "demo"}
	require.Equal(t,
		BuildOptimizedImageURL("demo", "img_abc", 256),
		c.ImageURL("img_abc", 256))
}
