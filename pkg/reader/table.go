package reader

import (
	"bytes"
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/jsonpath"
	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
)

// nameColumn is always the first column.
var nameColumn = apiextensionsv1.CustomResourceColumnDefinition{
	Name:     "Name",
	Type:     "string",
	JSONPath: ".metadata.name",
}

// LoadTable renders the meta.k8s.io/v1 Table projection of the objects
// p globs, using the matching CustomResourceDefinition's
// additionalPrinterColumns when one is archived for g, or the bare
// Name column otherwise.
func (r *Reader) LoadTable(g gvk.GVK, p archivepath.ArchivePath) (map[string]interface{}, error) {
	matches, err := r.Glob(p)
	if err != nil {
		return nil, err
	}

	columns := r.printerColumns(g)
	jsonPaths := make([]*jsonpath.JSONPath, len(columns))
	for i, c := range columns {
		jp := jsonpath.New(c.Name)
		jp.AllowMissingKeys(true)
		if err := jp.Parse("{" + c.JSONPath + "}"); err != nil {
			return nil, fmt.Errorf("%w: printer column %q jsonpath %q: %v", apierrors.ErrParse, c.Name, c.JSONPath, err)
		}
		jsonPaths[i] = jp
	}

	rows := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		data, err := r.src.Get(m)
		if err != nil {
			return nil, err
		}
		var obj map[string]interface{}
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: decoding %q: %v", apierrors.ErrParse, m, err)
		}

		cells := make([]string, len(jsonPaths))
		for i, jp := range jsonPaths {
			var buf bytes.Buffer
			if err := jp.Execute(&buf, obj); err != nil {
				return nil, fmt.Errorf("%w: evaluating printer column %q on %q: %v", apierrors.ErrParse, columns[i].Name, m, err)
			}
			cells[i] = buf.String()
		}

		rows = append(rows, map[string]interface{}{
			"cells":  cells,
			"object": toPartialObjectMetadata(obj),
		})
	}

	return map[string]interface{}{
		"kind":              "Table",
		"apiVersion":        "meta.k8s.io/v1",
		"columnDefinitions": columns,
		"rows":              rows,
	}, nil
}

// printerColumns returns the Name column followed by g's
// additionalPrinterColumns, if a matching CustomResourceDefinition is
// archived. Any lookup/parse failure degrades to the Name-only table
// rather than failing the whole request: a missing CRD definition is
// the common case, not an error.
func (r *Reader) printerColumns(g gvk.GVK) []apiextensionsv1.CustomResourceColumnDefinition {
	columns := []apiextensionsv1.CustomResourceColumnDefinition{nameColumn}

	crdGVK := gvk.GVK{Group: "apiextensions.k8s.io", Version: "v1", Kind: "CustomResourceDefinition"}
	crdPath := archivepath.NewObjectPath(crdGVK, nsname.NamespaceName{Name: crdObjectName(g.Kind, g.Group)})

	data, err := r.Get(crdPath)
	if err != nil {
		return columns
	}

	var crd apiextensionsv1.CustomResourceDefinition
	if err := yaml.Unmarshal(data, &crd); err != nil {
		return columns
	}

	for _, v := range crd.Spec.Versions {
		if v.Name != g.Version {
			continue
		}
		return append(columns, v.AdditionalPrinterColumns...)
	}
	return columns
}

// toPartialObjectMetadata projects a decoded object down to the
// metadata-only shape the Table rows carry.
func toPartialObjectMetadata(obj map[string]interface{}) metav1.PartialObjectMetadata {
	meta, _ := obj["metadata"].(map[string]interface{})
	data, _ := yaml.Marshal(meta)

	var out metav1.ObjectMeta
	_ = yaml.Unmarshal(data, &out)

	result := metav1.PartialObjectMetadata{ObjectMeta: out}
	if apiVersion, ok := obj["apiVersion"].(string); ok {
		result.TypeMeta.APIVersion = apiVersion
	}
	if kind, ok := obj["kind"].(string); ok {
		result.TypeMeta.Kind = kind
	}
	return result
}
