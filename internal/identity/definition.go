package identity

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// Definition holds the root attributes of a model-definition document.
type Definition struct {
	Name      string
	Namespace string
}

// ReadDefinition reads the root element of the model-definition file at path.
// Both the "name" and "namespace" attributes are mandatory.
func ReadDefinition(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, &DefinitionError{File: path, Reason: "failed to read model definition", Err: err}
	}
	defer f.Close()

	root, err := rootElement(f)
	if err != nil {
		return Definition{}, &DefinitionError{File: path, Reason: "failed to parse model definition", Err: err}
	}

	var def Definition
	var hasName, hasNamespace bool
	for _, a := range root.Attr {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "name":
			def.Name, hasName = a.Value, true
		case "namespace":
			def.Namespace, hasNamespace = a.Value, true
		}
	}
	if !hasName {
		return Definition{}, &DefinitionError{File: path, Reason: "no mandatory attribute 'name' in root element"}
	}
	if !hasNamespace {
		return Definition{}, &DefinitionError{File: path, Reason: "no mandatory attribute 'namespace' in root element"}
	}
	return def, nil
}

// rootElement returns the first start element of the document.
func rootElement(r io.Reader) (xml.StartElement, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, fmt.Errorf("no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}
