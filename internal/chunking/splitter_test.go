package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func joinUnits(units []Unit) string {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteString(u.Text)
	}
	return sb.String()
}

func TestSplitRoundTrip(t *testing.T) {
	text := "# Title\n\nSome paragraph with ![alt](img.png) inline.\n\nAnother one with a [link](doc.md) here.\n\nTail."
	units := Split(text, []string{"\n\n", "\n"}, 32)
	require.Equal(t, text, joinUnits(units))
}

func TestSplitProtectsImageAndLinkSpans(t *testing.T) {
	text := "see ![alt text](http://host/a.png) and [doc](a.md)."
	units := Split(text, []string{" "}, 8)

	var protected []string
	for _, u := range units {
		if u.Protected {
			protected = append(protected, u.Text)
		}
	}
	require.Equal(t, []string{"![alt text](http://host/a.png)", "[doc](a.md)"}, protected)
	require.Equal(t, text, joinUnits(units))
}

func TestSplitDropsNestedLinkInsideImage(t *testing.T) {
	text := "![alt](u.png)"
	units := Split(text, []string{"\n\n"}, 64)
	require.Len(t, units, 1)
	require.True(t, units[0].Protected)
	require.Equal(t, text, units[0].Text)
}

func TestSplitSeparatorsBecomeStandaloneUnits(t *testing.T) {
	units := Split("a\n\nb\nc", []string{"\n\n", "\n"}, 16)
	var texts []string
	for _, u := range units {
		texts = append(texts, u.Text)
	}
	require.Equal(t, []string{"a", "\n\n", "b", "\n", "c"}, texts)
}

func TestSplitSecondaryPeriodSplit(t *testing.T) {
	// No primary separator present and the fragment exceeds chunkSize, so it
	// falls back to sentence periods.
	text := "first sentence. second sentence. third"
	units := Split(text, []string{"\n\n"}, 10)
	require.Greater(t, len(units), 1)
	require.Equal(t, text, joinUnits(units))
	for _, u := range units {
		require.False(t, u.Protected)
	}
}

func TestSplitEmptyText(t *testing.T) {
	require.Empty(t, Split("", []string{"\n\n"}, 16))
}

func TestSplitWhitespaceOnlySegmentsSurvive(t *testing.T) {
	text := "a\n\n\n\nb"
	units := Split(text, []string{"\n\n"}, 16)
	require.Equal(t, text, joinUnits(units))
}
