package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/edp1096/evalspice/internal/consts"
	"github.com/edp1096/evalspice/pkg/device"
	"github.com/edp1096/evalspice/pkg/simerr"
)

type ElementType string

const (
	TypeResistor      ElementType = "R"
	TypeVoltageSource ElementType = "V"
	TypeCurrentSource ElementType = "I"
)

type NetlistData struct {
	Elements []Element // Circuit elements, in declaration order
}

type Element struct {
	Type  ElementType // R, V or I
	Name  string      // Part name
	Nodes []string    // Node names, exactly two
	Value float64     // Resistance, voltage or current
	Line  int         // 1-based line in the netlist text
	Text  string      // Line text with the comment removed
}

// Clone returns a deep copy of d.
func (d *NetlistData) Clone() *NetlistData {
	out := &NetlistData{Elements: make([]Element, len(d.Elements))}
	for i, elem := range d.Elements {
		elem.Nodes = append([]string(nil), elem.Nodes...)
		out.Elements[i] = elem
	}
	return out
}

type parseState int

const (
	beforeCircuit parseState = iota
	inCircuit
	afterEnd
)

// parser carries the bracket state and the collected elements line by line.
type parser struct {
	state parseState
	names map[string]int // element name -> declaring line
	data  *NetlistData
}

func newParser() *parser {
	return &parser{
		names: make(map[string]int),
		data:  &NetlistData{},
	}
}

const maxLineSize = 1024 * 1024

func Parse(input string) (*NetlistData, error) {
	return ParseReader(strings.NewReader(input))
}

// ParseReader consumes r fully. A read failure is reported as ErrInputUnavailable.
func ParseReader(r io.Reader) (*NetlistData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	p := newParser()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.parseLine(lineNo, scanner.Text()); err != nil {
			return nil, err
		}
		if p.state == afterEnd {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, simerr.New(simerr.ErrMalformedNetlist, "line exceeds %d bytes", maxLineSize).AtLine(lineNo+1, "")
		}
		return nil, simerr.Wrap(simerr.ErrInputUnavailable, err)
	}

	return p.finish()
}

func (p *parser) finish() (*NetlistData, error) {
	switch p.state {
	case beforeCircuit:
		return nil, simerr.New(simerr.ErrMalformedNetlist, "missing %s directive", consts.DirectiveStart)
	case inCircuit:
		return nil, simerr.New(simerr.ErrMalformedNetlist, "unterminated circuit, missing %s directive", consts.DirectiveEnd)
	}
	return p.data, nil
}

func (p *parser) parseLine(lineNo int, raw string) error {
	line := stripComment(raw)
	if line == "" {
		return nil
	}

	switch {
	case strings.EqualFold(line, consts.DirectiveStart):
		if p.state == inCircuit {
			return simerr.New(simerr.ErrMalformedNetlist, "nested %s directive", consts.DirectiveStart).AtLine(lineNo, line)
		}
		p.state = inCircuit
		return nil
	case strings.EqualFold(line, consts.DirectiveEnd):
		switch p.state {
		case beforeCircuit:
			return simerr.New(simerr.ErrMalformedNetlist, "%s before %s directive", consts.DirectiveEnd, consts.DirectiveStart).AtLine(lineNo, line)
		case inCircuit:
			p.state = afterEnd
		}
		return nil
	}

	if p.state != inCircuit {
		return nil
	}

	elem, err := parseElement(line)
	if err != nil {
		if se, ok := err.(*simerr.Error); ok {
			return se.AtLine(lineNo, line)
		}
		return err
	}
	if first, dup := p.names[elem.Name]; dup {
		return simerr.New(simerr.ErrMalformedNetlist, "duplicate element name, first declared at line %d", first).
			AtLine(lineNo, line).For(elem.Name)
	}
	p.names[elem.Name] = lineNo

	elem.Line = lineNo
	elem.Text = line
	p.data.Elements = append(p.data.Elements, *elem)
	return nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, consts.CommentMarker); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// Tokens past the value are ignored.
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, simerr.New(simerr.ErrMalformedNetlist, "invalid element format, need at least 4 fields")
	}

	name := fields[0]
	first, _ := utf8.DecodeRuneInString(name)
	elem := &Element{
		Type:  ElementType(strings.ToUpper(string(first))),
		Name:  name,
		Nodes: []string{fields[1], fields[2]},
	}

	var valueField string
	switch elem.Type {
	case TypeResistor:
		valueField = fields[3]

	case TypeVoltageSource, TypeCurrentSource:
		if len(fields) < 5 {
			return nil, simerr.New(simerr.ErrMalformedNetlist, "missing DC value").For(name)
		}
		if !strings.EqualFold(fields[3], "dc") {
			return nil, simerr.New(simerr.ErrMalformedNetlist, "unsupported source type: %s", fields[3]).For(name)
		}
		valueField = fields[4]

	default:
		return nil, simerr.New(simerr.ErrMalformedNetlist, "unsupported element type: %s, only R, V and I are permitted", elem.Type).For(name)
	}

	value, err := ParseValue(valueField)
	if err != nil {
		return nil, simerr.Wrap(simerr.ErrInvalidComponentValue, err).For(name)
	}
	elem.Value = value

	return elem, nil
}

var unitMap = map[string]float64{
	"t":   1e12,  // tera
	"g":   1e9,   // giga
	"meg": 1e6,   // mega
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valueRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)(meg|[tgkmunpf])?[a-z]*$`)

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	val = strings.TrimSpace(val)

	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		matches := valueRe.FindStringSubmatch(strings.ToLower(val))
		if matches == nil {
			return 0, fmt.Errorf("invalid value format: %s", val)
		}

		num, err = strconv.ParseFloat(matches[1], 64)
		if err != nil {
			return 0, err
		}
		if matches[2] != "" {
			num *= unitMap[matches[2]]
		}
	}

	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("value is not finite: %s", val)
	}
	return num, nil
}

func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case TypeResistor:
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value, elem.Line), nil
	case TypeVoltageSource:
		return device.NewDCVoltageSource(elem.Name, elem.Nodes, elem.Value, elem.Line), nil
	case TypeCurrentSource:
		return device.NewDCCurrentSource(elem.Name, elem.Nodes, elem.Value, elem.Line), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}
