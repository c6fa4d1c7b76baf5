// Package lsif is the reference implementation for the L-System Interchange Format,
// a stream of YAML documents each describing one system:
//
//	name: koch
//	axiom: F
//	constants: "+-"
//	rules:
//	  F: F+F-F-F+F
//	config:
//	  line_length: 5
//	  turning_angle: 90
package lsif

import (
	"io"

	"gopkg.in/yaml.v2"
)

type Format struct {
	Name      string            `yaml:"name"`
	Axiom     string            `yaml:"axiom"`
	Constants string            `yaml:"constants"`
	Rules     map[string]string `yaml:"rules"`
	Config    map[string]string `yaml:"config"`
}

type Decoder struct {
	in          io.Reader
	yamlDecoder *yaml.Decoder
}

func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{
		in:          in,
		yamlDecoder: yaml.NewDecoder(in),
	}
}

// Decode reads the next document of the stream, io.EOF once there are none left.
func (dec *Decoder) Decode() (*Format, error) {
	format := &Format{}
	// Read until yaml multi-document delimiter and/or until EOF
	err := dec.yamlDecoder.Decode(format)
	return format, err
}
