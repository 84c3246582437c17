package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSigner struct {
	err error
}

func (s stubSigner) SignDocumentURL(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://bucket.example/" + key + "?X-Amz-Signature=abc", nil
}

func sampleHierarchy() TenantHierarchy {
	prl := time.Date(2025, time.March, 31, 22, 30, 0, 0, time.UTC)
	itv := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	return TenantHierarchy{
		Company: CompanyRecord{CIF: " B12345678 ", LegalName: " Acme Obras SL", REA: "REA-9", Email: "ops@acme.es"},
		Site:    SiteRecord{Code: "S-01 ", Name: "Torre Norte", ClientName: "Promotora", RiskLevel: "Alto"},
		Workers: []WorkerRecord{
			{DNI: "12345678z", Name: "Ana", Surname: "Ruiz", PRLLevel: "60h", PRLExpiresAt: &prl},
			{DNI: "99999999R", Name: "Old", Inactive: true},
		},
		Machines: []MachineRecord{
			{SerialNumber: "GR-77", Kind: "crane", ITVExpiresAt: &itv},
			{SerialNumber: "GR-01", Kind: "crane", Retired: true},
		},
		Documents: []DocumentRecord{
			{OwnerType: "Company", Category: "insurance", StorageKey: "docs/ins.pdf"},
			{OwnerType: "worker", OwnerID: "12345678Z", Category: "prl", URL: "https://files/prl.pdf"},
		},
	}
}

func TestNormalizeRiskProfile(t *testing.T) {
	assert.Equal(t, integration.RiskProfileHigh, NormalizeRiskProfile(" ALTO "))
	assert.Equal(t, integration.RiskProfileLow, NormalizeRiskProfile("low"))
	assert.Equal(t, integration.RiskProfileMedium, NormalizeRiskProfile("2"))
	assert.Equal(t, integration.RiskProfileMedium, NormalizeRiskProfile(""))
	assert.Equal(t, integration.RiskProfileMedium, NormalizeRiskProfile("extreme"))
}

func TestPayloadService_BuildCanonicalPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds a valid payload", func(t *testing.T) {
		svc := NewPayloadService(stubSigner{}, zap.NewNop())
		result, err := svc.BuildCanonicalPayload(ctx, sampleHierarchy())
		require.NoError(t, err)

		p := result.Payload
		assert.True(t, result.Validation.Valid)
		assert.Equal(t, "B12345678", p.Company.TaxID)
		assert.Equal(t, "Acme Obras SL", p.Company.Name)
		assert.Equal(t, "S-01", p.Site.Code)
		assert.Equal(t, integration.RiskProfileHigh, p.Site.RiskProfile)

		require.Len(t, p.Workers, 1)
		assert.Equal(t, "12345678Z", p.Workers[0].IDNumber)
		assert.Equal(t, "2025-03-31", p.Workers[0].TrainingExpiry.String())

		require.Len(t, p.Machines, 1)
		assert.Equal(t, "GR-77", p.Machines[0].Serial)

		require.Len(t, p.Docs, 2)
		assert.Equal(t, integration.DocEntityCompany, p.Docs[0].EntityType)
		assert.Equal(t, "https://bucket.example/docs/ins.pdf?X-Amz-Signature=abc", p.Docs[0].FileURL)
		assert.Equal(t, "https://files/prl.pdf", p.Docs[1].FileURL)
	})

	t.Run("Without a signer stored URLs are used", func(t *testing.T) {
		h := sampleHierarchy()
		h.Documents[0].URL = "https://files/ins.pdf"
		result, err := NewPayloadService(nil, nil).BuildCanonicalPayload(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, "https://files/ins.pdf", result.Payload.Docs[0].FileURL)
	})

	t.Run("Validation errors are reported, not returned", func(t *testing.T) {
		h := sampleHierarchy()
		h.Company.CIF = ""
		h.Workers[0].DNI = "  "
		result, err := NewPayloadService(stubSigner{}, nil).BuildCanonicalPayload(ctx, h)
		require.NoError(t, err)
		assert.False(t, result.Validation.Valid)
		assert.Equal(t, []string{"Company tax ID (CIF) is required", "Worker 1: DNI is required"}, result.Validation.Errors)
	})

	t.Run("Signing failure fails the build", func(t *testing.T) {
		svc := NewPayloadService(stubSigner{err: errors.New("no credentials")}, nil)
		_, err := svc.BuildCanonicalPayload(ctx, sampleHierarchy())
		assert.ErrorContains(t, err, "document 1")
	})

	t.Run("Empty hierarchy yields empty sequences", func(t *testing.T) {
		result, err := NewPayloadService(nil, nil).BuildCanonicalPayload(ctx, TenantHierarchy{})
		require.NoError(t, err)
		assert.NotNil(t, result.Payload.Workers)
		assert.NotNil(t, result.Payload.Machines)
		assert.NotNil(t, result.Payload.Docs)
	})
}

func TestPayloadDigest(t *testing.T) {
	a, err := PayloadDigest(map[string]any{"b": 1, "a": []any{"x", map[string]any{"z": true, "y": nil}}})
	require.NoError(t, err)
	b, err := PayloadDigest(map[string]any{"a": []any{"x", map[string]any{"y": nil, "z": true}}, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := PayloadDigest(map[string]any{"b": 2})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestJobLocker(t *testing.T) {
	locker := NewJobLocker()
	id := uuid.New()
	unlock := locker.Lock(id)

	acquired := make(chan struct{})
	go func() {
		release := locker.Lock(id)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock not acquired after unlock")
	}
}
