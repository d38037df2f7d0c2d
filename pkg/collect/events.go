package collect

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// Events collects every core Event and renders them into one aggregate
// HTML table at the fixed path event-filter.html.
type Events struct {
	Client kubernetes.Interface
	Writer *writer.Writer
}

type eventRow struct {
	Namespace         string
	InvolvedObject    string
	Reason            string
	ReasonClass       string
	Message           string
	Count             int32
	CreationTimestamp string
	FirstTimestamp    string
	LastTimestamp     string
}

var eventsTemplate = template.Must(template.New("events").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Events</title></head>
<body>
<table border="1">
<thead>
<tr><th>Namespace</th><th>Object</th><th>Reason</th><th>Message</th><th>Timestamps</th></tr>
</thead>
<tbody>
{{range .}}
<tr>
<td>{{.Namespace}}</td>
<td>{{.InvolvedObject}}</td>
<td class="{{.ReasonClass}}">{{.Reason}}</td>
<td>{{.Message}}</td>
<td>created={{.CreationTimestamp}} first={{.FirstTimestamp}} last={{.LastTimestamp}} count={{.Count}}</td>
</tr>
{{end}}
</tbody>
</table>
</body>
</html>
`))

// reasonClass styles a reason cell by keyword into one of three
// severity classes.
func reasonClass(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case containsAny(lower, "fail", "error", "kill", "backoff"):
		return "text-danger"
	case containsAny(lower, "notready", "unhealthy", "missing"):
		return "text-warning"
	default:
		return "text-muted"
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Collect lists every Event and writes the rendered table.
func (e *Events) Collect(ctx context.Context) error {
	list, err := e.Client.CoreV1().Events(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("%w: listing events: %v", apierrors.ErrAPI, err)
	}

	rows := make([]eventRow, 0, len(list.Items))
	for _, ev := range list.Items {
		rows = append(rows, toEventRow(ev))
	}

	var buf bytes.Buffer
	if err := eventsTemplate.Execute(&buf, rows); err != nil {
		return fmt.Errorf("%w: rendering events table: %v", apierrors.ErrWrite, err)
	}

	path := archivepath.NewCustomPath("event-filter.html")
	return e.Writer.Store(representation.New(path, buf.Bytes()))
}

func toEventRow(ev corev1.Event) eventRow {
	return eventRow{
		Namespace:         ev.Namespace,
		InvolvedObject:    ev.InvolvedObject.Kind + "/" + ev.InvolvedObject.Name,
		Reason:            ev.Reason,
		ReasonClass:       reasonClass(ev.Reason),
		Message:           ev.Message,
		Count:             ev.Count,
		CreationTimestamp: ev.CreationTimestamp.Format("2006-01-02T15:04:05Z07:00"),
		FirstTimestamp:    ev.FirstTimestamp.Format("2006-01-02T15:04:05Z07:00"),
		LastTimestamp:     ev.LastTimestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
}
