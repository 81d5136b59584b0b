package session

import (
	"strings"
)

type SessionErr string

func (err SessionErr) Error() string {
	return string(err)
}

const (
	ErrEmptyInput         SessionErr = "[session] empty input"
	ErrInvalidInput       SessionErr = "[session] input of not valid type"
	ErrUnknownElementType SessionErr = "[session] unknown element type"
	ErrSessionClosed      SessionErr = "[session] closed"
	ErrInvalidDisplayArea SessionErr = "[session] display area must be positive"
)

// ElementType is the key type of the tree, fixed for the session lifetime.
type ElementType uint8

const (
	Integer ElementType = iota
	Float
	String
	_elementTypeMax
)

func (typ ElementType) String() string {
	switch typ {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
	}
	return "unknown"
}

func ParseElementType(typ string) (ElementType, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "int", "integer":
		return Integer, nil
	case "float":
		return Float, nil
	case "string", "text":
		return String, nil
	default:
	}
	return _elementTypeMax, ErrUnknownElementType
}

// NodeView is a node as the renderer sees it after a layout.
// Left and Right index into Snapshot.Nodes, -1 when absent.
type NodeView struct {
	Key    string `json:"key"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Depth  int    `json:"depth"`
	Active bool   `json:"active"`
	Left   int    `json:"left"`
	Right  int    `json:"right"`
}

// Snapshot is the laid out tree, nodes in pre-order so parents come
// before their children.
type Snapshot struct {
	Type       string     `json:"type"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	TreeHeight int        `json:"treeHeight"`
	Count      int64      `json:"count"`
	Nodes      []NodeView `json:"nodes"`
}

// Session is the harness entry of a tree. Keys arrive as raw text and are
// parsed to the element type. All methods are safe for concurrent use;
// the redraw callback may call Layout.
type Session interface {
	ElementType() ElementType
	Insert(text string) error
	// Search highlights the found node for the configured duration.
	Search(text string) error
	Remove(text string) error
	// Resize takes effect on the next Layout.
	Resize(width, height int) error
	Layout() (Snapshot, error)
	Height() int
	Len() int64
	// Verify lays the tree out and checks ordering, row spacing and
	// column separation, reporting every violation.
	Verify() error
	Close() error
}
