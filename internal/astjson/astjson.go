// Package astjson encodes syntax trees as canonical JSON and decodes them
// back through the node factory.
//
// Node shapes:
//
//	{"arguments":["a","b"],"operator":"=in=","selector":"genre","type":"comparison"}
//	{"children":[...],"type":"and"}
//	{"children":[...],"type":"or"}
//
// Keys are emitted in sorted order, HTML characters are not escaped and no
// whitespace is added, so equal trees always encode to identical bytes.
// Hash builds a content identity on top of that.
package astjson

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/operator"
)

// Node type tags.
const (
	TypeComparison = "comparison"
	TypeAnd        = "and"
	TypeOr         = "or"
)

// DomainNode prefixes node hashes. The version suffix allows future
// encoding changes without colliding with old identities.
const DomainNode = "rsql/node/v1"

// Marshal returns the canonical JSON encoding of node.
func Marshal(node ast.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the hex SHA-256 of the canonical encoding, domain separated.
// Format: SHA256(DomainNode + 0x00 + canonical JSON)
func Hash(node ast.Node) (string, error) {
	data, err := Marshal(node)
	if err != nil {
		return "", fmt.Errorf("hash node: %w", err)
	}
	return HashJSON(data), nil
}

// HashJSON hashes bytes already produced by Marshal.
func HashJSON(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainNode))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func encode(buf *bytes.Buffer, node ast.Node) error {
	switch n := node.(type) {
	case *ast.Comparison:
		buf.WriteString(`{"arguments":[`)
		for i, arg := range n.Arguments() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, arg); err != nil {
				return err
			}
		}
		buf.WriteString(`],"operator":`)
		if err := encodeString(buf, n.Operator().Symbol()); err != nil {
			return err
		}
		buf.WriteString(`,"selector":`)
		if err := encodeString(buf, n.Selector()); err != nil {
			return err
		}
		buf.WriteString(`,"type":"` + TypeComparison + `"}`)
		return nil
	case *ast.And:
		return encodeLogical(buf, TypeAnd, n.Children())
	case *ast.Or:
		return encodeLogical(buf, TypeOr, n.Children())
	default:
		return fmt.Errorf("unsupported node type: %T", node)
	}
}

func encodeLogical(buf *bytes.Buffer, typ string, children []ast.Node) error {
	buf.WriteString(`{"children":[`)
	for i, child := range children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, child); err != nil {
			return fmt.Errorf("%s[%d]: %w", typ, i, err)
		}
	}
	buf.WriteString(`],"type":"` + typ + `"}`)
	return nil
}

// encodeString writes s as a JSON string without HTML escaping.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// wireNode is the decoding shape shared by all node types.
// Pointer fields distinguish an absent key from an empty value.
type wireNode struct {
	Type      string             `json:"type"`
	Selector  *string            `json:"selector"`
	Operator  *string            `json:"operator"`
	Arguments *[]string          `json:"arguments"`
	Children  *[]json.RawMessage `json:"children"`
}

// Unmarshal decodes a tree, resolving operator symbols against registry
// (nil means operator.Default()). Every node passes through ast.Factory,
// so decoded trees satisfy the same invariants as parsed ones.
func Unmarshal(data []byte, registry *operator.Registry) (ast.Node, error) {
	return decode(data, ast.NewFactory(registry), "$")
}

func decode(data []byte, f *ast.Factory, path string) (ast.Node, error) {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch w.Type {
	case TypeComparison:
		if w.Children != nil {
			return nil, fmt.Errorf("%s: comparison node must not have children", path)
		}
		if w.Selector == nil || w.Operator == nil || w.Arguments == nil {
			return nil, fmt.Errorf("%s: comparison node requires selector, operator and arguments", path)
		}
		node, err := f.CreateComparison(*w.Operator, *w.Selector, *w.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return node, nil
	case TypeAnd, TypeOr:
		if w.Selector != nil || w.Operator != nil || w.Arguments != nil {
			return nil, fmt.Errorf("%s: %s node only carries children", path, w.Type)
		}
		var raws []json.RawMessage
		if w.Children != nil {
			raws = *w.Children
		}
		children := make([]ast.Node, len(raws))
		for i, raw := range raws {
			child, err := decode(raw, f, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		op := operator.And
		if w.Type == TypeOr {
			op = operator.Or
		}
		node, err := f.CreateLogical(op, children)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("%s: unknown node type %q", path, w.Type)
	}
}
