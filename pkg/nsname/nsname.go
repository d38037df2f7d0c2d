// Package nsname parses the "namespace/name" shorthand used by kubectl
// and the Kubernetes CLI ecosystem into a structured pair.
package nsname

import "strings"

// NamespaceName is an optional name paired with an optional namespace.
// A cluster-scoped object has an empty Namespace.
type NamespaceName struct {
	Name      string
	Namespace string
}

// Parse accepts "ns/name", "/name", "ns/", or a bare "name" and returns the
// corresponding NamespaceName. A bare string with no slash is treated as a
// cluster-scoped name.
func Parse(s string) NamespaceName {
	idx := strings.IndexByte(s, '/')
	if idx < 0 {
		return NamespaceName{Name: s}
	}
	return NamespaceName{
		Namespace: s[:idx],
		Name:      s[idx+1:],
	}
}

// Clustered reports whether this identifies a cluster-scoped object, i.e.
// it carries no namespace.
func (n NamespaceName) Clustered() bool {
	return n.Namespace == ""
}

func (n NamespaceName) String() string {
	if n.Clustered() {
		return n.Name
	}
	return n.Namespace + "/" + n.Name
}
