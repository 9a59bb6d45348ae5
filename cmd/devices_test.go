package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telltales/internal/cli"
)

func seedResources(fx *cmdFixture) {
	fx.srv.SetList("/json/clients/list", map[string]any{
		"client": []any{map[string]any{"id": "100", "name": "Home", "online": "1"}},
	})
	fx.srv.SetList("/json/devices/list", map[string]any{
		"device": []any{
			map[string]any{"id": "2", "name": "Window"},
			map[string]any{"id": "1", "name": "Lamp", "state": 1},
		},
	})
	fx.srv.SetList("/json/sensors/list", map[string]any{
		"sensor": []any{map[string]any{"id": "9", "name": "Garden"}},
	})
}

func tableRows(stdout string) []string {
	var rows []string
	inTable := false
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "TYPE") {
			inTable = true
			continue
		}
		if inTable && line != "" {
			rows = append(rows, strings.Fields(line)[0]+"/"+strings.Fields(line)[1])
		}
	}
	return rows
}

func TestDevicesList_All(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")
	seedResources(fx)

	stdout, _, err := executeCommand("devices", "list")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Authenticated as Ada Lovelace.")
	assert.Equal(t, []string{"controller/100", "device/1", "device/2", "sensor/9"}, tableRows(stdout))
}

func TestDevicesList_RequestsAreSpaced(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")
	seedResources(fx)
	t.Setenv("TELLTALES_REQUEST_INTERVAL", "30ms")

	_, _, err := executeCommand("devices", "list")
	require.NoError(t, err)

	reqs := fx.srv.Requests()
	require.Len(t, reqs, 4)
	for i := 1; i < len(reqs); i++ {
		assert.GreaterOrEqual(t, reqs[i].At.Sub(reqs[i-1].At).Milliseconds(), int64(30))
	}
}

func TestDevicesList_Kind(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")
	seedResources(fx)

	stdout, _, err := executeCommand("devices", "list", "--kind", "sensors")
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor/9"}, tableRows(stdout))
	assert.Zero(t, fx.srv.Count("/json/devices/list"))
}

func TestDevicesList_Empty(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")

	stdout, _, err := executeCommand("devices", "list", "--kind", "controllers")
	require.NoError(t, err)
	assert.Contains(t, stdout, cli.EmptyResourcesMessage)
}

func TestDevicesList_JSONKeepsStdoutClean(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")
	seedResources(fx)

	stdout, stderr, err := executeCommand("devices", "list", "-o", "json")
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	assert.Len(t, records, 4)
	assert.Contains(t, stderr, "Authenticated as Ada Lovelace.")
}

func TestDevicesList_InvalidKind(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))

	_, _, err := executeCommand("devices", "list", "--kind", "lamps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "lamps"`)
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Empty(t, fx.srv.Requests())
}

func TestDevicesList_AuthFailureExitCode(t *testing.T) {
	newCmdFixture(t, storedCreds("stale"))

	_, _, err := executeCommand("devices", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
}

func TestDevicesGroupDefaultsToList(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")
	seedResources(fx)

	stdout, _, err := executeCommand("devices")
	require.NoError(t, err)
	assert.Len(t, tableRows(stdout), 4)
}
