package collect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/reader"
	"github.com/crust-gather/kubesnap/pkg/writer"
	"github.com/crust-gather/kubesnap/pkg/writer/dirwriter"
)

func TestVersionsCollectEmitsOneEntryPerContainer(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "p1"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{Name: "app", Image: "example/app:v1"},
				{Name: "sidecar", Image: "example/sidecar:v2"},
			},
		},
	}
	client := k8sfake.NewSimpleClientset(pod)

	base := t.TempDir()
	backend, err := dirwriter.New(base)
	require.NoError(t, err)
	w := writer.New(backend)

	v := &Versions{Client: client, Writer: w}
	require.NoError(t, v.Collect(context.Background()))
	require.NoError(t, w.Finish())

	r, err := reader.Open(base)
	require.NoError(t, err)
	data, err := r.GetPath(archivepath.NewCustomPath("app-versions.yaml").String())
	require.NoError(t, err)
	assert.Contains(t, string(data), "example/app:v1")
	assert.Contains(t, string(data), "example/sidecar:v2")
}
