package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"telltales/internal/telldus"
)

func sampleEntries() []telldus.Entry {
	return []telldus.Entry{
		{Category: telldus.CategorySensor, ID: "9", Name: "Garden", Details: "temp=12.5"},
		{Category: telldus.CategoryDevice, ID: "2", Name: "Lamp"},
		{Category: telldus.CategoryDevice, ID: "1", Name: "Lamp", Details: "state=1"},
		{Category: telldus.CategoryController, ID: "100", Name: "Home", Details: "online"},
	}
}

func TestSortEntries(t *testing.T) {
	entries := sampleEntries()
	SortEntries(entries)

	var order []string
	for _, e := range entries {
		order = append(order, string(e.Category)+"/"+e.ID)
	}
	assert.Equal(t, []string{"controller/100", "device/1", "device/2", "sensor/9"}, order)
}

func TestRenderResources_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, sampleEntries(), OutputOptions{Format: OutputFormatTable}))

	lines := splitLines(buf.String())
	require.Len(t, lines, 5)
	assert.Regexp(t, `^TYPE\s+ID\s+NAME\s+DETAILS$`, lines[0])
	assert.Regexp(t, `^controller\s+100\s+Home\s+online$`, lines[1])
	assert.Regexp(t, `^device\s+2\s+Lamp\s+-$`, lines[3])
}

func TestRenderResources_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, nil, OutputOptions{Format: OutputFormatTable}))
	assert.Equal(t, EmptyResourcesMessage+"\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderResources(&buf, nil, OutputOptions{Format: OutputFormatPretty}))
	assert.Equal(t, EmptyResourcesMessage+"\n", buf.String())
}

func TestRenderResources_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, sampleEntries(), OutputOptions{Format: OutputFormatPretty}))

	out := buf.String()
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Garden")
	assert.Contains(t, out, "temp=12.5")
}

func TestRenderResources_PrettyCutsLongDetails(t *testing.T) {
	long := strings.Repeat("humidity=55@% ", 10)
	entries := []telldus.Entry{{Category: telldus.CategorySensor, ID: "9", Name: "Garden", Details: long}}

	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, entries, OutputOptions{Format: OutputFormatPretty}))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.TrimSpace(long))

	buf.Reset()
	require.NoError(t, RenderResources(&buf, entries, OutputOptions{Format: OutputFormatJSON}))
	assert.Contains(t, buf.String(), strings.TrimSpace(long))
}

func TestRenderResources_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, sampleEntries(), OutputOptions{Format: OutputFormatJSON}))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, map[string]string{"type": "controller", "id": "100", "name": "Home", "details": "online"}, got[0])
	assert.NotContains(t, got[2], "details")
}

func TestRenderResources_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, sampleEntries(), OutputOptions{Format: OutputFormatYAML}))

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "sensor", got[3]["type"])
}

func TestRenderResources_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, nil, OutputOptions{Format: OutputFormatJSON}))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range ValidOutputFormats {
		assert.NoError(t, ValidateOutputFormat(string(f)))
	}
	err := ValidateOutputFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, pretty, json, yaml")
}

func TestOutputFlags_ToOutputOptions(t *testing.T) {
	opts, err := (&OutputFlags{OutputFormat: "json", NoHeaders: true}).ToOutputOptions()
	require.NoError(t, err)
	assert.Equal(t, OutputOptions{Format: OutputFormatJSON, NoHeaders: true}, opts)

	_, err = (&OutputFlags{OutputFormat: "wide"}).ToOutputOptions()
	assert.Error(t, err)
}
