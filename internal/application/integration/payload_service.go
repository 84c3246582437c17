package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/obralink/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// PayloadService builds canonical payloads from a tenant's stored hierarchy
type PayloadService struct {
	signer DocumentURLSigner
	logger *zap.Logger
}

// NewPayloadService creates a new PayloadService. Without a signer, documents
// are referenced by their stored URL only.
func NewPayloadService(signer DocumentURLSigner, logger *zap.Logger) *PayloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayloadService{signer: signer, logger: logger}
}

var riskAliases = map[string]integration.RiskProfile{
	"low":    integration.RiskProfileLow,
	"bajo":   integration.RiskProfileLow,
	"1":      integration.RiskProfileLow,
	"medium": integration.RiskProfileMedium,
	"medio":  integration.RiskProfileMedium,
	"2":      integration.RiskProfileMedium,
	"high":   integration.RiskProfileHigh,
	"alto":   integration.RiskProfileHigh,
	"3":      integration.RiskProfileHigh,
}

// NormalizeRiskProfile maps a stored risk level onto the canonical scale.
// Unknown or empty levels are treated as medium.
func NormalizeRiskProfile(raw string) integration.RiskProfile {
	if r, ok := riskAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return integration.RiskProfileMedium
}

// BuildCanonicalPayload assembles and validates the payload for one site.
// Inactive workers and retired machines are left out. A document whose URL
// cannot be signed fails the build.
func (s *PayloadService) BuildCanonicalPayload(ctx context.Context, h TenantHierarchy) (*BuildPayloadResult, error) {
	builder := integration.NewPayloadBuilder().
		SetCompany(integration.Company{
			TaxID:        strings.TrimSpace(h.Company.CIF),
			Name:         strings.TrimSpace(h.Company.LegalName),
			REANumber:    strings.TrimSpace(h.Company.REA),
			ContactEmail: strings.TrimSpace(h.Company.Email),
		}).
		SetSite(integration.Site{
			Code:        strings.TrimSpace(h.Site.Code),
			Name:        strings.TrimSpace(h.Site.Name),
			Client:      strings.TrimSpace(h.Site.ClientName),
			RiskProfile: NormalizeRiskProfile(h.Site.RiskLevel),
		})

	workers := make([]integration.Worker, 0, len(h.Workers))
	for _, w := range h.Workers {
		if w.Inactive {
			continue
		}
		worker := integration.Worker{
			IDNumber:      strings.ToUpper(strings.TrimSpace(w.DNI)),
			FirstName:     strings.TrimSpace(w.Name),
			LastName:      strings.TrimSpace(w.Surname),
			TrainingLevel: strings.TrimSpace(w.PRLLevel),
		}
		if w.PRLExpiresAt != nil {
			worker.TrainingExpiry = integration.DatePtr(integration.DateOf(*w.PRLExpiresAt))
		}
		workers = append(workers, worker)
	}
	builder.SetWorkers(workers)

	machines := make([]integration.Machine, 0, len(h.Machines))
	for _, m := range h.Machines {
		if m.Retired {
			continue
		}
		machine := integration.Machine{
			Serial: strings.TrimSpace(m.SerialNumber),
			Type:   strings.TrimSpace(m.Kind),
		}
		if m.ITVExpiresAt != nil {
			machine.MaintenanceExpiry = integration.DatePtr(integration.DateOf(*m.ITVExpiresAt))
		}
		machines = append(machines, machine)
	}
	builder.SetMachines(machines)

	docs := make([]integration.Doc, 0, len(h.Documents))
	for i, d := range h.Documents {
		url, err := s.documentURL(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		doc := integration.Doc{
			EntityType: integration.DocEntityType(strings.ToLower(strings.TrimSpace(d.OwnerType))),
			EntityID:   strings.TrimSpace(d.OwnerID),
			Category:   strings.TrimSpace(d.Category),
			FileURL:    url,
			Meta:       d.Meta,
		}
		if d.ExpiresAt != nil {
			doc.Expiry = integration.DatePtr(integration.DateOf(*d.ExpiresAt))
		}
		docs = append(docs, doc)
	}
	builder.SetDocuments(docs)

	payload := builder.Build()
	validation := payload.Validate()
	if !validation.Valid {
		s.logger.Debug("Canonical payload built with validation errors",
			zap.String("site_code", payload.Site.Code),
			zap.Strings("errors", validation.Errors))
	}
	return &BuildPayloadResult{Payload: payload, Validation: validation}, nil
}

func (s *PayloadService) documentURL(ctx context.Context, d DocumentRecord) (string, error) {
	key := strings.TrimSpace(d.StorageKey)
	if key == "" || s.signer == nil {
		return strings.TrimSpace(d.URL), nil
	}
	return s.signer.SignDocumentURL(ctx, key)
}
