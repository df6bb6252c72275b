package jirasoap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// XML namespaces used by the Jira SOAP service.
const (
	nsEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	nsEncoding = "http://schemas.xmlsoap.org/soap/encoding/"
	nsXSD      = "http://www.w3.org/2001/XMLSchema"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	nsRPC      = "http://soap.rpc.jira.atlassian.com"
	nsBeans    = "http://beans.soap.rpc.jira.atlassian.com"
)

// param is one argument of an rpc/encoded call. Exactly one of value,
// fields, or items is meaningful, selected by kind.
type param struct {
	name   string
	kind   paramKind
	typ    string
	value  string
	fields []param
	items  []param
}

type paramKind int

const (
	kindScalar paramKind = iota
	kindStruct
	kindArray
	kindNil
)

func stringParam(name, value string) param {
	return param{name: name, kind: kindScalar, typ: "xsd:string", value: value}
}

func structParam(name, typ string, fields ...param) param {
	return param{name: name, kind: kindStruct, typ: typ, fields: fields}
}

func arrayParam(name, itemType string, items ...param) param {
	return param{name: name, kind: kindArray, typ: itemType, items: items}
}

func nilParam(name string) param {
	return param{name: name, kind: kindNil}
}

// encodeEnvelope renders a SOAP request for operation with positional
// parameters named in0..inN.
func encodeEnvelope(operation string, params ...param) []byte {
	var b bytes.Buffer

	b.WriteString(xml.Header)
	fmt.Fprintf(&b,
		`<soapenv:Envelope xmlns:soapenv=%q xmlns:soapenc=%q xmlns:xsd=%q xmlns:xsi=%q xmlns:rpc=%q xmlns:beans=%q>`,
		nsEnvelope, nsEncoding, nsXSD, nsXSI, nsRPC, nsBeans,
	)
	b.WriteString(`<soapenv:Body>`)
	fmt.Fprintf(&b, `<rpc:%s soapenv:encodingStyle=%q>`, operation, nsEncoding)

	for i, p := range params {
		if p.name == "" {
			p.name = fmt.Sprintf("in%d", i)
		}
		writeParam(&b, p)
	}

	fmt.Fprintf(&b, `</rpc:%s>`, operation)
	b.WriteString(`</soapenv:Body></soapenv:Envelope>`)

	return b.Bytes()
}

func writeParam(b *bytes.Buffer, p param) {
	switch p.kind {
	case kindNil:
		fmt.Fprintf(b, `<%s xsi:nil="true"/>`, p.name)
	case kindScalar:
		fmt.Fprintf(b, `<%s xsi:type=%q>`, p.name, p.typ)
		_ = xml.EscapeText(b, []byte(p.value))
		fmt.Fprintf(b, `</%s>`, p.name)
	case kindStruct:
		fmt.Fprintf(b, `<%s xsi:type=%q>`, p.name, p.typ)
		for _, f := range p.fields {
			writeParam(b, f)
		}
		fmt.Fprintf(b, `</%s>`, p.name)
	case kindArray:
		fmt.Fprintf(b,
			`<%s xsi:type="soapenc:Array" soapenc:arrayType="%s[%d]">`,
			p.name, p.typ, len(p.items),
		)
		for _, item := range p.items {
			item.name = "item"
			writeParam(b, item)
		}
		fmt.Fprintf(b, `</%s>`, p.name)
	}
}

// node is a generic XML element used to walk rpc/encoded responses,
// whose shape depends on how the server chose to serialize references.
type node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []*node
}

// attr returns the value of the attribute with the given local name.
func (n *node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// child returns the first child element with the given local name.
func (n *node) child(local string) *node {
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

func (n *node) isNil() bool {
	return n.attr("nil") == "true" || n.attr("nil") == "1"
}

// decodeTree parses an XML document into a node tree rooted at the
// document element.
func decodeTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)

	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("decoding xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decoding xml: unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("decoding xml: empty document")
	}
	return root, nil
}

// response is a decoded SOAP response body.
type response struct {
	// ret is the operation's return element, or nil for void operations.
	ret  *node
	refs map[string]*node
}

// parseResponse extracts the return value or fault from a SOAP envelope.
func parseResponse(root *node) (*response, error) {
	if root.Name.Local != "Envelope" {
		return nil, fmt.Errorf("unexpected root element %q", root.Name.Local)
	}
	body := root.child("Body")
	if body == nil {
		return nil, fmt.Errorf("envelope has no body")
	}

	refs := make(map[string]*node)
	collectRefs(body, refs)

	var result *node
	for _, c := range body.Children {
		if c.Name.Local == "Fault" {
			return nil, parseFault(c)
		}
		// Top-level multiRef siblings carry referenced values, not the
		// operation result.
		if result == nil && c.attr("id") == "" {
			result = c
		}
	}
	if result == nil {
		return nil, fmt.Errorf("envelope body has no response element")
	}

	resp := &response{refs: refs}
	if len(result.Children) > 0 {
		resp.ret = result.Children[0]
	}
	return resp, nil
}

func collectRefs(n *node, refs map[string]*node) {
	if id := n.attr("id"); id != "" {
		refs[id] = n
	}
	for _, c := range n.Children {
		collectRefs(c, refs)
	}
}

// resolve follows href references until it reaches a concrete element.
func (r *response) resolve(n *node) *node {
	for i := 0; n != nil && i < len(r.refs)+1; i++ {
		href := n.attr("href")
		if !strings.HasPrefix(href, "#") {
			return n
		}
		n = r.refs[strings.TrimPrefix(href, "#")]
	}
	return n
}

// text returns the resolved character data of n.
func (r *response) text(n *node) string {
	n = r.resolve(n)
	if n == nil || n.isNil() {
		return ""
	}
	return n.Text
}

// field returns the resolved text of a struct member.
func (r *response) field(n *node, local string) string {
	n = r.resolve(n)
	if n == nil {
		return ""
	}
	return r.text(n.child(local))
}

// items returns the resolved elements of an array value.
func (r *response) items(n *node) []*node {
	n = r.resolve(n)
	if n == nil || n.isNil() {
		return nil
	}
	out := make([]*node, 0, len(n.Children))
	for _, c := range n.Children {
		if item := r.resolve(c); item != nil {
			out = append(out, item)
		}
	}
	return out
}

func parseFault(n *node) *Fault {
	f := &Fault{}
	for _, c := range n.Children {
		switch c.Name.Local {
		case "faultcode":
			f.Code = strings.TrimSpace(c.Text)
		case "faultstring":
			f.String = strings.TrimSpace(c.Text)
		case "detail":
			f.Detail = strings.TrimSpace(flattenText(c))
		}
	}
	return f
}

func flattenText(n *node) string {
	var b strings.Builder
	b.WriteString(n.Text)
	for _, c := range n.Children {
		b.WriteString(flattenText(c))
	}
	return b.String()
}
