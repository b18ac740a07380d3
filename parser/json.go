package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Field    string      `json:"field,omitempty"`
	Token    string      `json:"token,omitempty"`
	Error    *jsonError  `json:"error,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON(""))
}

func (n *Node) toJSON(field string) *jsonNode {
	jn := &jsonNode{
		Kind:  n.Kind.String(),
		Field: field,
	}

	if n.Span.Start != 0 || n.Span.End != 0 {
		jn.Span = &jsonSpan{Start: n.Span.Start, End: n.Span.End}
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	if n.Err != nil {
		jn.Error = &jsonError{
			Message: n.Err.Message,
		}
		for _, exp := range n.Err.Expected {
			jn.Error.Expected = append(jn.Error.Expected, exp.String())
		}
		if n.Err.Got != nil {
			jn.Error.Got = n.Err.Got.Literal
		}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON(n.FieldName(i))
		}
	}

	return jn
}
