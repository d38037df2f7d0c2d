package archivepath

// Container is an opaque container name inside a pod.
type Container string

// LogGroupKind distinguishes the members of the LogGroup tagged union.
type LogGroupKind int

const (
	// Current selects the live log stream of a container.
	Current LogGroupKind = iota
	// Previous selects the log stream of a container's previous
	// incarnation, if any.
	Previous
	// NodeKubelet selects a node's kubelet systemd-journal unit.
	NodeKubelet
	// NodeKubeletPath selects a node's on-disk kubelet.log file.
	NodeKubeletPath
	// CustomUserLog selects the output of a user-supplied log command,
	// named by Spec.
	CustomUserLog
)

// LogGroup is the tagged union determining how a log Representation's
// filename is derived. Only one of Container (for Current/Previous) or
// Spec (for CustomUserLog) is meaningful for a given Kind.
type LogGroup struct {
	Kind      LogGroupKind
	Container Container
	Spec      string
}

// CurrentLog builds a LogGroup selecting container's live log stream.
func CurrentLog(c Container) LogGroup { return LogGroup{Kind: Current, Container: c} }

// PreviousLog builds a LogGroup selecting container's previous log stream.
func PreviousLog(c Container) LogGroup { return LogGroup{Kind: Previous, Container: c} }

// NodeKubeletLog builds a LogGroup selecting a node's kubelet journal unit.
func NodeKubeletLog() LogGroup { return LogGroup{Kind: NodeKubelet} }

// NodeKubeletPathLog builds a LogGroup selecting a node's kubelet.log file.
func NodeKubeletPathLog() LogGroup { return LogGroup{Kind: NodeKubeletPath} }

// CustomUserLogGroup builds a LogGroup for a user-supplied log command,
// named by spec (typically the systemd unit or command alias).
func CustomUserLogGroup(spec string) LogGroup { return LogGroup{Kind: CustomUserLog, Spec: spec} }

// filename returns the sentinel or container-scoped filename this group
// maps to, without any directory prefix.
func (g LogGroup) filename() string {
	switch g.Kind {
	case Current:
		return string(g.Container) + "/current.log"
	case Previous:
		return string(g.Container) + "/previous.log"
	case NodeKubelet:
		return "kubelet.log"
	case NodeKubeletPath:
		return "kubelet-log-path.log"
	case CustomUserLog:
		return g.Spec + ".log"
	default:
		return "unknown.log"
	}
}
