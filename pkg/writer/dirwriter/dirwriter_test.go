package dirwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

func TestWriteCreatesParentDirectoriesEagerly(t *testing.T) {
	base := t.TempDir()
	b, err := New(base)
	require.NoError(t, err)

	p := archivepath.NewCustomPath("namespaces/default/v1/pod/p1.yaml")
	require.NoError(t, b.Write(representation.New(p, []byte("data"))))
	require.NoError(t, b.Finish())

	data, err := os.ReadFile(filepath.Join(base, "namespaces", "default", "v1", "pod", "p1.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
