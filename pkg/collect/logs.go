package collect

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	apierr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/filter"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

var podGVK = gvk.GVK{Version: "v1", Kind: "Pod"}

// Logs collects pod container logs for one LogGroup (current or
// previous). Grounded on kubectl-gather's per-container log-streaming
// loop, generalised to both directions via archivepath.LogGroup.
type Logs struct {
	Group     archivepath.LogGroupKind
	Client    kubernetes.Interface
	Filters   *filter.Set
	Writer    *writer.Writer
	Namespace string
}

// Collect lists pods (namespace-scoped if Namespace is set), and for
// every container of every filter-surviving pod, fetches its log
// stream and stores it under the pod's Logs path. A 400 response (no
// previous container) is treated as an empty, non-error result.
func (l *Logs) Collect(ctx context.Context) error {
	pods, err := l.listPods(ctx)
	if err != nil {
		return err
	}

	for i := range pods {
		pod := &pods[i]
		if l.Filters != nil && !l.Filters.AcceptObject(pod.Namespace) {
			continue
		}
		if err := l.collectPod(ctx, pod); err != nil {
			return err
		}
	}
	return nil
}

func (l *Logs) listPods(ctx context.Context) ([]corev1.Pod, error) {
	var list *corev1.PodList
	var err error
	if l.Namespace != "" {
		list, err = l.Client.CoreV1().Pods(l.Namespace).List(ctx, metav1.ListOptions{})
	} else {
		list, err = l.Client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing pods: %v", apierrors.ErrAPI, err)
	}
	return list.Items, nil
}

func (l *Logs) collectPod(ctx context.Context, pod *corev1.Pod) error {
	previous := l.Group == archivepath.Previous
	objPath := archivepath.NewObjectPath(podGVK, nsname.NamespaceName{Namespace: pod.Namespace, Name: pod.Name})

	for _, c := range pod.Spec.Containers {
		data, err := l.fetchLog(ctx, pod.Namespace, pod.Name, c.Name, previous)
		if err != nil {
			if apierr.IsBadRequest(err) {
				// NotApplicable: expected when a container never restarted.
				continue
			}
			return fmt.Errorf("%w: logs for %s/%s container %s: %v", apierrors.ErrAPI, pod.Namespace, pod.Name, c.Name, err)
		}

		var group archivepath.LogGroup
		if previous {
			group = archivepath.PreviousLog(archivepath.Container(c.Name))
		} else {
			group = archivepath.CurrentLog(archivepath.Container(c.Name))
		}
		logPath := archivepath.NewLogPath(objPath, group)
		if err := l.Writer.Store(representation.New(logPath, data)); err != nil {
			return err
		}
	}
	return nil
}

func (l *Logs) fetchLog(ctx context.Context, namespace, pod, container string, previous bool) ([]byte, error) {
	req := l.Client.CoreV1().Pods(namespace).GetLogs(pod, &corev1.PodLogOptions{
		Container: container,
		Previous:  previous,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return io.ReadAll(stream)
}
