package collect

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// Versions collects one (name, namespace, container, image) entry per
// container in the spec of every pod, whatever its state, written as a single
// app-versions.yaml document.
type Versions struct {
	Client kubernetes.Interface
	Writer *writer.Writer
}

type versionEntry struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Container string `json:"container"`
	Image     string `json:"image"`
}

// Collect lists every pod and emits the aggregate version document.
func (v *Versions) Collect(ctx context.Context) error {
	list, err := v.Client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("%w: listing pods: %v", apierrors.ErrAPI, err)
	}

	var entries []versionEntry
	for _, pod := range list.Items {
		for _, c := range pod.Spec.Containers {
			entries = append(entries, versionEntry{
				Name:      pod.Name,
				Namespace: pod.Namespace,
				Container: c.Name,
				Image:     c.Image,
			})
		}
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: marshalling app versions: %v", apierrors.ErrWrite, err)
	}

	path := archivepath.NewCustomPath("app-versions.yaml")
	return v.Writer.Store(representation.New(path, data))
}
