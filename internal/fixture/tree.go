package fixture

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// element is a minimal read-only XML element tree. It keeps only what the
// parser needs: names, attributes, child elements and the first text node.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*element

	// text is the content of the first child node when that node is
	// character data. Adjacent text and CDATA sections are merged.
	text *string

	nodes        int  // child nodes seen so far (elements, text, comments, PIs)
	lastWasText  bool // last child node was character data
	textIsFirstN bool // the open text run is the first child node
}

// readDocument decodes r into an element tree and returns the root element.
func readDocument(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)

	var root *element
	var stack []*element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed fixture document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("malformed fixture document: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
				parent.addNode(false)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].addText(string(t))
			}

		case xml.Comment, xml.ProcInst:
			if len(stack) > 0 {
				stack[len(stack)-1].addNode(false)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("malformed fixture document: no root element")
	}
	return root, nil
}

func (e *element) addNode(text bool) {
	e.nodes++
	e.lastWasText = text
	e.textIsFirstN = text && e.nodes == 1
}

func (e *element) addText(s string) {
	if e.lastWasText {
		if e.textIsFirstN {
			merged := *e.text + s
			e.text = &merged
		}
		return
	}
	e.addNode(true)
	if e.textIsFirstN {
		e.text = &s
	}
}

// child returns the first child element with the given local name.
func (e *element) child(local string) *element {
	for _, c := range e.children {
		if c.name.Local == local {
			return c
		}
	}
	return nil
}

// childrenNamed returns all child elements with the given local name, in document order.
func (e *element) childrenNamed(local string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// attr returns the unqualified attribute with the given local name.
func (e *element) attr(local string) *string {
	return e.attrNS("", local)
}

// attrNS returns the attribute with the given namespace URI and local name.
func (e *element) attrNS(space, local string) *string {
	for _, a := range e.attrs {
		if a.Name.Space == space && a.Name.Local == local {
			v := a.Value
			return &v
		}
	}
	return nil
}
