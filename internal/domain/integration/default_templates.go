package integration

// TemplateDefinition is the tenant-independent content of a template version
type TemplateDefinition struct {
	Platform          PlatformCode
	Description       string
	DestinationSchema map[string]any
	Rules             []MappingRule
}

// DefaultTemplateDefinitions returns the built-in platform layouts. Platform
// differences live only here, as data for the generic mapping engine.
func DefaultTemplateDefinitions() []TemplateDefinition {
	return []TemplateDefinition{
		nalandaTemplate(),
		ctaimaTemplate(),
		ecoordinaTemplate(),
	}
}

// DefaultTemplateDefinition returns the built-in definition for a platform
func DefaultTemplateDefinition(platform PlatformCode) (TemplateDefinition, bool) {
	for _, def := range DefaultTemplateDefinitions() {
		if def.Platform == platform {
			return def, true
		}
	}
	return TemplateDefinition{}, false
}

func nalandaTemplate() TemplateDefinition {
	return TemplateDefinition{
		Platform:    PlatformNalanda,
		Description: "Nalanda import layout",
		DestinationSchema: map[string]any{
			"empresa": map[string]any{
				"cif":         "",
				"razonSocial": "",
				"numeroREA":   "",
				"email":       "",
			},
			"obra": map[string]any{
				"codigo":      "",
				"nombre":      "",
				"cliente":     "",
				"nivelRiesgo": "",
			},
			"personal":   []any{},
			"maquinaria": []any{},
			"documentos": []any{},
		},
		Rules: []MappingRule{
			{From: "company.taxId", To: "empresa.cif", Transform: "upper"},
			{From: "company.name", To: "empresa.razonSocial", Transform: "trim"},
			{From: "company.reaNumber", To: "empresa.numeroREA"},
			{From: "company.contactEmail", To: "empresa.email", Transform: "lower"},
			{From: "site.code", To: "obra.codigo"},
			{From: "site.name", To: "obra.nombre"},
			{From: "site.client", To: "obra.cliente"},
			{From: "site.riskProfile", To: "obra.nivelRiesgo", Transform: "map:low=BAJO|medium=MEDIO|high=ALTO|*=MEDIO"},
			{From: "workers[*].idNumber", To: "personal[*].dni", Transform: "upper"},
			{From: "workers[*].firstName", To: "personal[*].nombre"},
			{From: "workers[*].lastName", To: "personal[*].apellidos"},
			{From: "workers[*].trainingLevel", To: "personal[*].formacionPRL"},
			{From: "workers[*].trainingExpiry", To: "personal[*].prlCaducidad", Transform: "date:YYYY-MM-DD"},
			{From: "machines[*].serial", To: "maquinaria[*].numeroSerie", Transform: "upper"},
			{From: "machines[*].type", To: "maquinaria[*].tipo"},
			{From: "machines[*].maintenanceExpiry", To: "maquinaria[*].revisionCaducidad", Transform: "date:YYYY-MM-DD"},
			{From: "docs[*].entityType", To: "documentos[*].ambito", Transform: "map:company=EMPRESA|worker=TRABAJADOR|machine=MAQUINA|site=OBRA"},
			{From: "docs[*].category", To: "documentos[*].tipo"},
			{From: "docs[*].fileUrl", To: "documentos[*].url"},
			{From: "docs[*].expiry", To: "documentos[*].caducidad", Transform: "date:YYYY-MM-DD"},
		},
	}
}

func ctaimaTemplate() TemplateDefinition {
	return TemplateDefinition{
		Platform:    PlatformCTAIMA,
		Description: "CTAIMA contractor import layout",
		DestinationSchema: map[string]any{
			"contractor": map[string]any{
				"vatNumber":    "",
				"legalName":    "",
				"reaCode":      "",
				"contactEmail": "",
			},
			"workCenter": map[string]any{
				"reference": "",
				"name":      "",
				"client":    "",
				"riskLevel": "",
			},
			"employees":   []any{},
			"equipment":   []any{},
			"attachments": []any{},
		},
		Rules: []MappingRule{
			{From: "company.taxId", To: "contractor.vatNumber", Transform: "prefix:ES"},
			{From: "company.name", To: "contractor.legalName", Transform: "upper"},
			{From: "company.reaNumber", To: "contractor.reaCode", Default: "N/A"},
			{From: "company.contactEmail", To: "contractor.contactEmail", Transform: "lower"},
			{From: "site.code", To: "workCenter.reference"},
			{From: "site.name", To: "workCenter.name"},
			{From: "site.client", To: "workCenter.client"},
			{From: "site.riskProfile", To: "workCenter.riskLevel", Transform: "upper"},
			{From: "workers[*].idNumber", To: "employees[*].documentId", Transform: "replace:[^A-Za-z0-9]|"},
			{From: "workers[*].firstName", To: "employees[*].firstName"},
			{From: "workers[*].lastName", To: "employees[*].lastName"},
			{From: "workers[*].trainingLevel", To: "employees[*].safetyTraining", Default: "NONE"},
			{From: "workers[*].trainingExpiry", To: "employees[*].safetyTrainingExpiry", Transform: "date:DD/MM/YYYY"},
			{From: "machines[*].serial", To: "equipment[*].serialNumber"},
			{From: "machines[*].type", To: "equipment[*].category"},
			{From: "machines[*].maintenanceExpiry", To: "equipment[*].inspectionExpiry", Transform: "date:DD/MM/YYYY"},
			{From: "docs[*].category", To: "attachments[*].documentType", Transform: "upper"},
			{From: "docs[*].entityType", To: "attachments[*].scope"},
			{From: "docs[*].fileUrl", To: "attachments[*].url"},
			{From: "docs[*].expiry", To: "attachments[*].validUntil", Transform: "date:DD/MM/YYYY"},
		},
	}
}

func ecoordinaTemplate() TemplateDefinition {
	return TemplateDefinition{
		Platform:    PlatformEcoordina,
		Description: "Ecoordina coordination layout",
		DestinationSchema: map[string]any{
			"company": map[string]any{
				"taxCode": "",
				"name":    "",
				"rea":     "",
				"email":   "",
			},
			"project": map[string]any{
				"code":     "",
				"title":    "",
				"owner":    "",
				"risk":     "",
				"workers":  []any{},
				"machines": []any{},
			},
			"documents": []any{},
		},
		Rules: []MappingRule{
			{From: "company.taxId", To: "company.taxCode", Transform: "upper"},
			{From: "company.name", To: "company.name"},
			{From: "company.reaNumber", To: "company.rea"},
			{From: "company.contactEmail", To: "company.email", Transform: "lower"},
			{From: "site.code", To: "project.code"},
			{From: "site.name", To: "project.title"},
			{From: "site.client", To: "project.owner"},
			{From: "site.riskProfile", To: "project.risk", Transform: "map:low=1|medium=2|high=3|*=2"},
			{From: "workers[*].idNumber", To: "project.workers[*].nif", Transform: "upper"},
			{From: "workers[*].firstName", To: "project.workers[*].givenName"},
			{From: "workers[*].lastName", To: "project.workers[*].familyName"},
			{From: "workers[*].trainingLevel", To: "project.workers[*].training"},
			{From: "workers[*].trainingExpiry", To: "project.workers[*].trainingValidTo", Transform: "date:MM/DD/YYYY"},
			{From: "machines[*].serial", To: "project.machines[*].serial"},
			{From: "machines[*].type", To: "project.machines[*].kind"},
			{From: "machines[*].maintenanceExpiry", To: "project.machines[*].maintenanceValidTo", Transform: "date:MM/DD/YYYY"},
			{From: "docs[*].entityType", To: "documents[*].owner"},
			{From: "docs[*].category", To: "documents[*].category"},
			{From: "docs[*].fileUrl", To: "documents[*].link"},
			{From: "docs[*].expiry", To: "documents[*].expiresOn", Transform: "date:MM/DD/YYYY"},
		},
	}
}
