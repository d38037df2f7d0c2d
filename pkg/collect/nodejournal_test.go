package collect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

func TestNodeJournalCollectNoNodesIsNoOp(t *testing.T) {
	client := k8sfake.NewSimpleClientset()
	n := &NodeJournal{Client: client}
	require.NoError(t, n.Collect(context.Background()))
}

func TestNodeJournalCreateDebugPodSpec(t *testing.T) {
	client := k8sfake.NewSimpleClientset()
	n := &NodeJournal{Client: client}

	pod, err := n.createDebugPod(context.Background(), "node-1")
	require.NoError(t, err)

	assert.Equal(t, "node-1", pod.Spec.NodeName)
	assert.True(t, pod.Spec.HostNetwork)
	assert.True(t, pod.Spec.HostPID)
	assert.True(t, pod.Spec.HostIPC)
	require.Len(t, pod.Spec.Volumes, 1)
	assert.Equal(t, "/", pod.Spec.Volumes[0].HostPath.Path)
	require.Len(t, pod.Spec.Containers[0].VolumeMounts, 1)
	assert.Equal(t, "/host", pod.Spec.Containers[0].VolumeMounts[0].MountPath)
}

func TestNodeJournalDeleteDebugPodRemovesIt(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "debug-1"}}
	client := k8sfake.NewSimpleClientset(pod)
	n := &NodeJournal{Client: client}

	n.deleteDebugPod(context.Background(), "debug-1", "default")

	_, err := client.CoreV1().Pods("default").Get(context.Background(), "debug-1", metav1.GetOptions{})
	assert.True(t, apierr.IsNotFound(err))
}

func TestNodeJournalWaitRunningSucceedsImmediately(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "debug-2"},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	}
	client := k8sfake.NewSimpleClientset(pod)
	n := &NodeJournal{Client: client}

	require.NoError(t, n.waitRunning(context.Background(), "debug-2", "default"))
}
