package collect

import (
	"bytes"
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// podReadyTimeout bounds how long to wait for a debug pod to reach
// Running.
const podReadyTimeout = 10 * time.Second

// defaultDebugImage is the image used for the ephemeral per-node debug pod.
// It only needs a shell and journalctl, both present in any
// distroless-adjacent systemd host image; operators can override it.
const defaultDebugImage = "busybox:stable"

// NodeJournal schedules one ephemeral, host-mounting debug pod per
// node and reads kubelet/systemd-journal logs through it via exec.
// The pod is always deleted on every exit path, success or failure.
type NodeJournal struct {
	Client     kubernetes.Interface
	RESTConfig *rest.Config
	Writer     *writer.Writer
	Image      string
	// Units lists additional systemd units to read via `journalctl -u`,
	// each producing a CustomUserLog representation named by unit.
	Units []string
}

var nodeGVK = gvk.GVK{Version: "v1", Kind: "Node"}

// Collect lists every node and reads its kubelet log and configured
// systemd units through a per-node ephemeral debug pod.
func (n *NodeJournal) Collect(ctx context.Context) error {
	nodes, err := n.Client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("%w: listing nodes: %v", apierrors.ErrAPI, err)
	}

	for _, node := range nodes.Items {
		if err := n.collectNode(ctx, node.Name); err != nil {
			return err
		}
	}
	return nil
}

func (n *NodeJournal) collectNode(ctx context.Context, nodeName string) error {
	pod, err := n.createDebugPod(ctx, nodeName)
	if err != nil {
		return fmt.Errorf("%w: scheduling debug pod on %s: %v", apierrors.ErrAPI, nodeName, err)
	}
	defer n.deleteDebugPod(context.Background(), pod.Name, pod.Namespace)

	if err := n.waitRunning(ctx, pod.Name, pod.Namespace); err != nil {
		return fmt.Errorf("%w: waiting for debug pod on %s: %v", apierrors.ErrAPI, nodeName, err)
	}

	objPath := archivepath.NewObjectPath(nodeGVK, nsname.NamespaceName{Name: nodeName})

	if out, err := n.exec(ctx, pod, []string{"cat", "/host/var/log/kubelet.log"}); err == nil && len(out) > 0 {
		if err := n.store(objPath, archivepath.NodeKubeletPathLog(), out); err != nil {
			return err
		}
	}

	if out, err := n.exec(ctx, pod, []string{"journalctl", "-u", "kubelet"}); err == nil && len(out) > 0 {
		if err := n.store(objPath, archivepath.NodeKubeletLog(), out); err != nil {
			return err
		}
	}

	for _, unit := range n.Units {
		out, err := n.exec(ctx, pod, []string{"journalctl", "-u", unit})
		if err != nil || len(out) == 0 {
			continue
		}
		if err := n.store(objPath, archivepath.CustomUserLogGroup(unit), out); err != nil {
			return err
		}
	}

	return nil
}

func (n *NodeJournal) store(objPath archivepath.ArchivePath, group archivepath.LogGroup, data []byte) error {
	logPath := archivepath.NewLogPath(objPath, group)
	return n.Writer.Store(representation.New(logPath, data))
}

func (n *NodeJournal) createDebugPod(ctx context.Context, nodeName string) (*corev1.Pod, error) {
	image := n.Image
	if image == "" {
		image = defaultDebugImage
	}
	hostPathType := corev1.HostPathDirectory

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: "kubesnap-debug-",
			Namespace:    "default",
			Labels:       map[string]string{"app.kubernetes.io/managed-by": "kubesnap"},
		},
		Spec: corev1.PodSpec{
			NodeName:      nodeName,
			HostNetwork:   true,
			HostPID:       true,
			HostIPC:       true,
			RestartPolicy: corev1.RestartPolicyNever,
			Tolerations: []corev1.Toleration{
				{Operator: corev1.TolerationOpExists},
			},
			Containers: []corev1.Container{
				{
					Name:    "debug",
					Image:   image,
					Command: []string{"sleep", "3600"},
					VolumeMounts: []corev1.VolumeMount{
						{Name: "host", MountPath: "/host"},
					},
					SecurityContext: &corev1.SecurityContext{Privileged: boolPtr(true)},
				},
			},
			Volumes: []corev1.Volume{
				{
					Name: "host",
					VolumeSource: corev1.VolumeSource{
						HostPath: &corev1.HostPathVolumeSource{Path: "/", Type: &hostPathType},
					},
				},
			},
		},
	}

	return n.Client.CoreV1().Pods(pod.Namespace).Create(ctx, pod, metav1.CreateOptions{})
}

func (n *NodeJournal) deleteDebugPod(ctx context.Context, name, namespace string) {
	grace := int64(0)
	_ = n.Client.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{GracePeriodSeconds: &grace})
}

func (n *NodeJournal) waitRunning(ctx context.Context, name, namespace string) error {
	ctx, cancel := context.WithTimeout(ctx, podReadyTimeout)
	defer cancel()

	return wait.PollUntilContextCancel(ctx, 500*time.Millisecond, true, func(ctx context.Context) (bool, error) {
		pod, err := n.Client.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierr.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return pod.Status.Phase == corev1.PodRunning, nil
	})
}

func (n *NodeJournal) exec(ctx context.Context, pod *corev1.Pod, command []string) ([]byte, error) {
	req := n.Client.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(pod.Namespace).
		Name(pod.Name).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: "debug",
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(n.RESTConfig, "POST", req.URL())
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func boolPtr(b bool) *bool { return &b }
