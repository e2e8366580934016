// Package treeio reads and writes the tree dumps produced by the parser.
//
// A dump is a Document whose root is the program node. YAML is the
// human-editable form; msgpack (*.pft) is the compact one. Both carry the
// same fields.
package treeio

import (
	"path/filepath"
	"strings"
)

// Version is the interchange version this build reads and writes.
const Version = 1

type Document struct {
	Version int   `yaml:"paraflow" msgpack:"paraflow"`
	Root    *Node `yaml:"root" msgpack:"root"`
}

// Node is one tree node as the parser emits it.
type Node struct {
	Kind string `yaml:"kind" msgpack:"kind"`
	Text string `yaml:"text,omitempty" msgpack:"text,omitempty"`
	Line uint32 `yaml:"line,omitempty" msgpack:"line,omitempty"`
	Col  uint32 `yaml:"col,omitempty" msgpack:"col,omitempty"`

	Access string `yaml:"access,omitempty" msgpack:"access,omitempty"`
	Const  bool   `yaml:"const,omitempty" msgpack:"const,omitempty"`
	Poly   bool   `yaml:"poly,omitempty" msgpack:"poly,omitempty"`
	Ref    bool   `yaml:"ref,omitempty" msgpack:"ref,omitempty"`
	Fn     string `yaml:"fn,omitempty" msgpack:"fn,omitempty"`
	Iface  bool   `yaml:"iface,omitempty" msgpack:"iface,omitempty"`
	Para   string `yaml:"para,omitempty" msgpack:"para,omitempty"`
	// Lit is the literal kind of a lit node; Text holds its value.
	Lit string `yaml:"lit,omitempty" msgpack:"lit,omitempty"`

	Children []*Node `yaml:"children,omitempty" msgpack:"children,omitempty"`
}

// Format selects the encoding of a dump.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".pft", ".msgpack":
		return FormatMsgpack
	}
	return FormatUnknown
}
