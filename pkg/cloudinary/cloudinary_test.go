package cloudinary

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestPublicIDForSlugsFileName(t *testing.T) {
	id := publicIDFor("Hukum Newton (bab 2).pdf")
	require.True(t, strings.HasPrefix(id, "Hukum-Newton--bab-2-"), id)
	require.False(t, strings.HasSuffix(id, "-"))
}

func TestPublicIDForFallsBackOnEmptySlug(t *testing.T) {
	id := publicIDFor("???.png")
	require.True(t, strings.HasPrefix(id, "upload-"), id)
}
