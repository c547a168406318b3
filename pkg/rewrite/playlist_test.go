package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWritePlaylist(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WritePlaylist(&buf, []string{"RefFieldTests", "NullableTests"}))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<Playlist Version="2.0">
  <Rule Match="Any">
    <Property Name="Class" Value="RefFieldTests"></Property>
    <Property Name="Class" Value="NullableTests"></Property>
  </Rule>
</Playlist>
`
	require.Equal(t, want, buf.String())
}

func TestWritePlaylistEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WritePlaylist(&buf, nil))

	require.Contains(t, buf.String(), `<Playlist Version="2.0">`)
	require.NotContains(t, buf.String(), "<Property")
}
