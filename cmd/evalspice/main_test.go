package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/evalspice/internal/config"
	"github.com/edp1096/evalspice/pkg/spice"
)

const divider = `.circuit
V1 N1 GND dc 10
R1 N1 N2 10
R2 N2 GND 10
.end
`

func TestParseSweep(t *testing.T) {
	src, start, stop, step, err := parseSweep("V1:0:10:0.5")
	require.NoError(t, err)
	assert.Equal(t, "V1", src)
	assert.Equal(t, []float64{0, 10, 0.5}, []float64{start, stop, step})

	for _, bad := range []string{"V1:0:10", ":0:1:1", "V1:a:1:1", "V1:0:1:1:2"} {
		_, _, _, _, err := parseSweep(bad)
		assert.Error(t, err, bad)
	}
}

func TestPrintSolution(t *testing.T) {
	sol, err := spice.Evaluate(divider)
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, printSolution(&text, config.FormatText, sol))
	assert.Equal(t, `Node Voltages:
V(GND) = 0.000 V
V(N1) = 10.000 V
V(N2) = 5.000 V

Branch Currents:
I(V1) = -500.000 mA
`, text.String())

	var buf bytes.Buffer
	require.NoError(t, printSolution(&buf, config.FormatJSON, sol))
	var decoded spice.Solution
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sol.Voltages.Names(), decoded.Voltages.Names())
	assert.Equal(t, []string{"V1"}, decoded.Currents.Names())
}

func TestPrintSolution_ShortedResistor(t *testing.T) {
	sol, err := spice.Evaluate(".circuit\nV1 N1 GND dc 10\nR1 N1 N2 0\nR2 N2 GND 10\n.end\n")
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, printSolution(&text, config.FormatText, sol))
	assert.Regexp(t, `I\(V_zero_0\) = \S+ \S*A \(short R1\)\n`, text.String())
	assert.Equal(t, 1, strings.Count(text.String(), "(short"))

	var buf bytes.Buffer
	require.NoError(t, printSolution(&buf, config.FormatJSON, sol))
	assert.Contains(t, buf.String(), `"short": "R1"`)
}

func TestPrintSweep(t *testing.T) {
	points, err := spice.Sweep(divider, "V1", 0, 2, 1)
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, printSweep(&text, config.FormatText, "V1", points))
	assert.Contains(t, text.String(), "(3 points)")
	assert.Contains(t, text.String(), "V(N2)=1.000 V")

	var buf bytes.Buffer
	require.NoError(t, printSweep(&buf, config.FormatJSON, "V1", points))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, 2.0, decoded[2]["value"])
	assert.Contains(t, decoded[2], "voltages")
}
