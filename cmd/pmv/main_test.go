package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

var standardFlags = []string{"--clo", "0.5", "--met", "1.2", "--wme", "0", "--ta", "25", "--tr", "25", "--vel", "0.1"}

func TestFlagsOnly(t *testing.T) {
	tests := []struct {
		name     string
		humidity []string
		pmv      string
		ppd      string
	}{
		{"relative humidity", []string{"--rh", "50"}, "0.082", "5.138"},
		{"vapor pressure", []string{"--pa", "1500"}, "0.063", "5.083"},
		{"pressure wins", []string{"--rh", "10", "--pa", "1500"}, "0.063", "5.083"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append(standardFlags, tt.humidity...)...)
			require.NoError(t, err)
			assert.Equal(t,
				"Predicted Mean Vote (PMV): "+tt.pmv+"\nPredicted Percentage of Dissatisfied (PPD): "+tt.ppd+"\n",
				out)
		})
	}
}

func TestInteractive(t *testing.T) {
	t.Run("relative humidity", func(t *testing.T) {
		out, err := run(t, "0.5\n1.2\n0\n25\n25\n0.1\ny\n50\n")
		require.NoError(t, err)
		assert.Contains(t, out, "Clothing (clo): ")
		assert.Contains(t, out, "Do you have relative humidity (RH)? (Y/N): ")
		assert.Contains(t, out, "Relative humidity (%): ")
		assert.NotContains(t, out, "Water vapor pressure (Pa): ")
		assert.Contains(t, out, "Predicted Mean Vote (PMV): 0.082\n")
	})

	t.Run("vapor pressure", func(t *testing.T) {
		out, err := run(t, "0.5\n1.2\n0\n25\n25\n0.1\nN\n1500\n")
		require.NoError(t, err)
		assert.Contains(t, out, "Water vapor pressure (Pa): ")
		assert.Contains(t, out, "Predicted Mean Vote (PMV): 0.063\n")
	})
}

func TestInteractive_PartialFlags(t *testing.T) {
	out, err := run(t, "25\n25\n0.1\n", "--clo", "0.5", "--met", "1.2", "--wme", "0", "--rh", "50")
	require.NoError(t, err)
	assert.NotContains(t, out, "Clothing (clo): ")
	assert.NotContains(t, out, "(Y/N)")
	assert.Contains(t, out, "Air Temperature (°C): ")
	assert.Contains(t, out, "Predicted Mean Vote (PMV): 0.082\n")
}

func TestInteractive_Errors(t *testing.T) {
	_, err := run(t, "0.5\nwarm\n")
	assert.ErrorContains(t, err, "not a number")

	_, err = run(t, "0.5\n")
	assert.Error(t, err)
}

func TestOutputJSON(t *testing.T) {
	out, err := run(t, "", append(standardFlags, "--rh", "50", "--output", "json", "--details")...)
	require.NoError(t, err)

	var got struct {
		PMV     *float64 `json:"pmv"`
		PPD     *float64 `json:"ppd"`
		Details struct {
			Iterations int  `json:"iterations"`
			Converged  bool `json:"converged"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.PMV)
	assert.InDelta(t, 0.081783, *got.PMV, 1e-5)
	assert.InDelta(t, 5.138495, *got.PPD, 1e-5)
	assert.Equal(t, 4, got.Details.Iterations)
	assert.True(t, got.Details.Converged)
}

func TestOutputJSON_NonFiniteIsNull(t *testing.T) {
	out, err := run(t, "", "--clo", "0.5", "--met", "1.2", "--wme", "0", "--ta", "25", "--tr", "25", "--vel=-1", "--rh", "50", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Nil(t, got["pmv"])
}

func TestOutputYAML(t *testing.T) {
	out, err := run(t, "", append(standardFlags, "--pa", "1500", "--output", "yaml")...)
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 0.063147, got["pmv"], 1e-5)
	assert.InDelta(t, 5.082559, got["ppd"], 1e-5)
}

func TestOutputUnsupported(t *testing.T) {
	_, err := run(t, "", append(standardFlags, "--rh", "50", "--output", "xml")...)
	assert.Error(t, err)
}

func TestRejectsArgs(t *testing.T) {
	_, err := run(t, "", "extra")
	assert.Error(t, err)
}
