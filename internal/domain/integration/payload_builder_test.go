package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadBuilder_Validate(t *testing.T) {
	t.Run("Complete payload is valid", func(t *testing.T) {
		b := NewPayloadBuilder().
			SetCompany(Company{TaxID: "B1", Name: "Acme"}).
			SetSite(Site{Code: "S-01", Name: "Torre"})

		res := b.Validate()
		assert.True(t, res.Valid)
		assert.NotNil(t, res.Errors)
		assert.Empty(t, res.Errors)
	})

	t.Run("Missing tax ID and worker DNI", func(t *testing.T) {
		b := NewPayloadBuilder().
			SetCompany(Company{Name: "Acme"}).
			SetSite(Site{Code: "S-01", Name: "Torre"}).
			SetWorkers([]Worker{
				{IDNumber: "1A", FirstName: "Ana"},
				{FirstName: "Luis"},
			})

		res := b.Validate()
		assert.False(t, res.Valid)
		assert.Equal(t, []string{
			"Company tax ID (CIF) is required",
			"Worker 2: DNI is required",
		}, res.Errors)
	})

	t.Run("Every rule reports independently", func(t *testing.T) {
		b := NewPayloadBuilder().
			SetMachines([]Machine{{}}).
			SetDocuments([]Doc{{}})

		res := b.Validate()
		assert.Equal(t, []string{
			"Company tax ID (CIF) is required",
			"Company name is required",
			"Site code is required",
			"Site name is required",
			"Machine 1: serial number is required",
			"Machine 1: type is required",
			"Document 1: entity type is required",
			"Document 1: category is required",
			"Document 1: file URL is required",
		}, res.Errors)
	})

	t.Run("Whitespace counts as missing", func(t *testing.T) {
		res := NewPayloadBuilder().
			SetCompany(Company{TaxID: "  ", Name: "Acme"}).
			SetSite(Site{Code: "S", Name: "N"}).
			Validate()
		assert.Equal(t, []string{"Company tax ID (CIF) is required"}, res.Errors)
	})
}

func TestPayloadBuilder_Build(t *testing.T) {
	expiry := NewDate(2025, time.March, 4)
	workers := []Worker{{IDNumber: "1A", FirstName: "Ana", TrainingExpiry: &expiry}}
	b := NewPayloadBuilder().SetWorkers(workers)

	built := b.Build()
	workers[0].IDNumber = "changed"
	built.Workers[0].TrainingExpiry.Day = 9

	again := b.Build()
	assert.Equal(t, "1A", again.Workers[0].IDNumber)
	assert.Equal(t, 4, again.Workers[0].TrainingExpiry.Day)
	assert.NotNil(t, again.Machines)
	assert.NotNil(t, again.Docs)
}

func TestCanonicalPayload_JSON(t *testing.T) {
	p := NewPayloadBuilder().
		SetWorkers([]Worker{{IDNumber: "1A", TrainingExpiry: DatePtr(NewDate(2025, time.January, 1))}}).
		Build()

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trainingExpiry":"2025-01-01"`)
	assert.Contains(t, string(data), `"machines":[]`)

	var decoded CanonicalPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NewDate(2025, time.January, 1), *decoded.Workers[0].TrainingExpiry)

	m, err := p.ToMap()
	require.NoError(t, err)
	v, err := Get(m, "workers[*].trainingExpiry")
	require.NoError(t, err)
	assert.Equal(t, []any{"2025-01-01"}, v)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)

	var zero Date
	data, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}
