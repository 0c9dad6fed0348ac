package harvestfn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventIDForURL_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := EventIDForURL("https://shop.example.com/product/widget-5mm")
	require.NoError(t, err)
	b, err := EventIDForURL("https://shop.example.com/product/widget-5mm")
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.True(t, strings.HasPrefix(a, "harvest:"))
}

func TestEventIDForURL_IgnoresQueryAndFragment(t *testing.T) {
	t.Parallel()

	plain, err := EventIDForURL("https://shop.example.com/product/widget")
	require.NoError(t, err)
	tracked, err := EventIDForURL("https://shop.example.com/product/widget?utm_source=mail#reviews")
	require.NoError(t, err)

	require.Equal(t, plain, tracked)
}

func TestEventIDForURL_NormalizesHostAndTrailingSlash(t *testing.T) {
	t.Parallel()

	a, err := EventIDForURL("https://Shop.Example.com/product/widget/")
	require.NoError(t, err)
	b, err := EventIDForURL("https://shop.example.com/product/widget")
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestEventIDForURL_RejectsMissingHost(t *testing.T) {
	t.Parallel()

	_, err := EventIDForURL("/product/widget")
	require.Error(t, err)
}
