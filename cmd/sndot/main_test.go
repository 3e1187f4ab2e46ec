package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sndot/internal/donor/importer"
	"sndot/internal/donor/models"
)

const importFixture = `[
  {
    "donor": {
      "national_id": "111.444.777-35",
      "name": "Maria Silva",
      "sex": "F",
      "birth_date": "10/03/1995",
      "birth_city": "Recife",
      "birth_state": "PE",
      "profession": "Médico",
      "residence_city": "São Paulo",
      "residence_state": "SP",
      "emergency_contact": "João Silva 11987654321",
      "blood_type": "O+"
    },
    "intent": {"donate_now": true, "status": "active", "organs": ["Rins", "Córneas"]}
  },
  {
    "donor": {"national_id": "123", "name": "<script>x</script>"}
  }
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedOrgansCommand(t *testing.T) {
	out, err := run(t, "seed-organs")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(models.OrganCatalog))
	assert.Contains(t, out, "already present: Coração")
}

func TestImportCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "donors.json")
	require.NoError(t, os.WriteFile(file, []byte(importFixture), 0o600))

	t.Run("text report", func(t *testing.T) {
		out, err := run(t, "import", file)
		require.NoError(t, err)
		assert.Contains(t, out, "#0 created")
		assert.Contains(t, out, "#1 failed")
		assert.Contains(t, out, "1 created, 0 updated, 0 unchanged, 1 failed")
	})

	t.Run("json report", func(t *testing.T) {
		out, err := run(t, "import", "--json", file)
		require.NoError(t, err)

		var report importer.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.Len(t, report.Results, 2)
		assert.Equal(t, importer.OutcomeCreated, report.Results[0].Outcome)
		assert.Equal(t, importer.OutcomeFailed, report.Results[1].Outcome)
		assert.Contains(t, report.Results[1].Fields, "national_id")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "import", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})
}

func TestMigrateRequiresDatabase(t *testing.T) {
	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}
