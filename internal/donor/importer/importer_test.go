package importer

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sndot/internal/donor/models"
	"sndot/internal/donor/service"
	donorstore "sndot/internal/donor/store/donor"
	intentstore "sndot/internal/donor/store/intent"
	organstore "sndot/internal/donor/store/organ"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

const importFile = `[
  {"donor": {"national_id": "111.444.777-35", "name": "Maria Silva", "age": 30, "sex": "F",
             "birth_date": "10/03/1995", "birth_city": "Recife", "birth_state": "PE",
             "residence_city": "São Paulo", "residence_state": "SP",
             "emergency_contact": "João 11987654321", "blood_type": "O+"},
   "intent": {"donate_now": true, "organs": ["Rins", "Córneas"]}},
  {"donor": {"national_id": "529.982.247-25", "name": "José Souza", "sex": "M",
             "birth_date": "1980-01-20", "birth_city": "Natal", "birth_state": "RN",
             "residence_city": "Natal", "residence_state": "RN",
             "emergency_contact": "Ana 84999990000", "blood_type": "A-"}},
  {"donor": {"national_id": "111.444.777-35", "name": "Maria Silva", "age": 31, "sex": "F",
             "birth_date": "10/03/1995", "birth_city": "Recife", "birth_state": "PE",
             "residence_city": "São Paulo", "residence_state": "SP",
             "emergency_contact": "João 11987654321", "blood_type": "O+"},
   "intent": {"donate_now": true, "organs": ["Rins", "Córneas"]}},
  {"donor": {"national_id": "123", "name": "X", "age": 200}}
]`

func newRegistrar(t *testing.T) *service.Registrar {
	t.Helper()
	r, err := service.NewRegistrar(donorstore.New(), intentstore.New(), organstore.New(), service.NewShardedTx(0),
		service.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	_, err = r.SeedOrgans(context.Background())
	require.NoError(t, err)
	return r
}

func TestImportReportsEachRecord(t *testing.T) {
	records, err := Decode(strings.NewReader(importFile))
	require.NoError(t, err)
	require.Len(t, records, 4)

	registrar := newRegistrar(t)
	// One worker keeps the file order deterministic for the duplicate pair.
	report, err := New(registrar, WithConcurrency(1), WithClock(func() time.Time { return fixedNow })).
		Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, report.Results, 4)
	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)
	assert.Equal(t, OutcomeCreated, report.Results[1].Outcome)
	assert.Equal(t, OutcomeUpdated, report.Results[2].Outcome)
	assert.Equal(t, report.Results[0].DonorID, report.Results[2].DonorID)
	assert.Equal(t, OutcomeFailed, report.Results[3].Outcome)
	assert.Contains(t, report.Results[3].Fields, "national_id")
	assert.Contains(t, report.Results[3].Fields, "age")
	assert.Equal(t, "2 created, 1 updated, 0 unchanged, 1 failed", report.Summary())

	donors, err := registrar.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, donors, 2)

	maria, err := registrar.GetByNationalID(context.Background(), "11144477735")
	require.NoError(t, err)
	assert.Equal(t, 31, maria.Donor.Age)
	assert.Equal(t, []string{"Córneas", "Rins"}, maria.Intent.Organs)

	jose, err := registrar.GetByNationalID(context.Background(), "52998224725")
	require.NoError(t, err)
	assert.Equal(t, 45, jose.Donor.Age)
}

func TestImportIsIdempotent(t *testing.T) {
	records, err := Decode(strings.NewReader(importFile))
	require.NoError(t, err)
	imp := New(newRegistrar(t), WithConcurrency(4))

	_, err = imp.Run(context.Background(), records[:2])
	require.NoError(t, err)
	report, err := imp.Run(context.Background(), records[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, report.Unchanged)
}

type flakyRegistrar struct {
	calls atomic.Int32
}

func (f *flakyRegistrar) Register(context.Context, models.Fields, *models.IntentPayload) (*service.Registration, error) {
	if f.calls.Add(1) == 1 {
		return nil, dErrors.New(dErrors.CodeConflict, "lost race")
	}
	return &service.Registration{Donor: &models.Donor{ID: id.NewDonorID()}}, nil
}

func TestImportRetriesConflictOnce(t *testing.T) {
	reg := &flakyRegistrar{}
	report, err := New(reg).Run(context.Background(), []Record{{Donor: models.Fields{}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, report.Results[0].Outcome)
	assert.Equal(t, int32(2), reg.calls.Load())
}

const legacyImportFile = `[
  {"dados": {"cpf": "111.444.777-35", "nome": "Maria Silva", "idade": 30, "sexo": "F",
             "data_nascimento": "10/03/1995", "cidade_natal": "Recife", "estado_natal": "PE",
             "profissao": "Médico", "cidade_residencia": "São Paulo", "estado_residencia": "SP",
             "estado_civil": "Casado", "contato_emergencia": "João 11987654321",
             "tipo_sanguineo": "O+"},
   "intencao": {"doar_agora": true}}
]`

func TestImportAcceptsLegacyExportKeys(t *testing.T) {
	records, err := Decode(strings.NewReader(legacyImportFile))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Intent)
	assert.Equal(t, "Maria Silva", records[0].Donor["name"])
	assert.Equal(t, json.Number("30"), records[0].Donor["age"])

	registrar := newRegistrar(t)
	report, err := New(registrar, WithClock(func() time.Time { return fixedNow })).Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)

	maria, err := registrar.GetByNationalID(context.Background(), "11144477735")
	require.NoError(t, err)
	assert.Equal(t, "Recife", maria.Donor.BirthCity)
	assert.Equal(t, "João 11987654321", maria.Donor.EmergencyContact)
	assert.Equal(t, "Casado", maria.Donor.MaritalStatus)
	assert.Nil(t, maria.Intent)
}

func TestDecodeRejectsNonArray(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"donor": {}}`))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&flakyRegistrar{}).Run(ctx, []Record{{Donor: models.Fields{}}})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}
