package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMappingTemplate(t *testing.T) {
	tenantID := uuid.New()
	schema := map[string]any{"a": ""}
	rules := []MappingRule{{From: "x", To: "a"}}

	t.Run("Valid template", func(t *testing.T) {
		tpl, err := NewMappingTemplate(tenantID, PlatformCTAIMA, 2, schema, rules)
		require.NoError(t, err)
		assert.Equal(t, 2, tpl.Version)
		assert.NotEqual(t, uuid.Nil, tpl.ID)

		rules[0].From = "mutated"
		assert.Equal(t, "x", tpl.Rules[0].From)
		rules[0].From = "x"
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := NewMappingTemplate(uuid.Nil, PlatformCTAIMA, 1, schema, rules)
		assert.ErrorIs(t, err, ErrInvalidTenantID)
		_, err = NewMappingTemplate(tenantID, "", 1, schema, rules)
		assert.ErrorIs(t, err, ErrPlatformInvalidCode)
		_, err = NewMappingTemplate(tenantID, PlatformCTAIMA, 0, schema, rules)
		assert.ErrorIs(t, err, ErrTemplateInvalid)
		_, err = NewMappingTemplate(tenantID, PlatformCTAIMA, 1, nil, nil)
		assert.ErrorIs(t, err, ErrTemplateInvalid)
	})
}

func TestValidateTemplate(t *testing.T) {
	assert.Equal(t, []string{"Template is required"}, ValidateTemplate(nil).Errors)

	res := ValidateTemplate(&MappingTemplate{})
	assert.Equal(t, []string{
		"Destination schema is required",
		"At least one mapping rule is required",
	}, res.Errors)

	res = ValidateTemplate(&MappingTemplate{
		DestinationSchema: map[string]any{"a": ""},
		Rules:             []MappingRule{{From: "x", To: "a"}, {From: "", To: " "}},
	})
	assert.Equal(t, []string{
		"Rule 2: 'from' path is required",
		"Rule 2: 'to' path is required",
	}, res.Errors)
}

func TestDefaultTemplateDefinitions(t *testing.T) {
	defs := DefaultTemplateDefinitions()
	require.Len(t, defs, 3)

	for _, def := range defs {
		t.Run(def.Platform.String(), func(t *testing.T) {
			tpl, err := NewMappingTemplate(uuid.New(), def.Platform, 1, def.DestinationSchema, def.Rules)
			require.NoError(t, err)
			for _, r := range tpl.Rules {
				_, err := ParsePath(r.From)
				assert.NoError(t, err, r.From)
				_, err = ParsePath(r.To)
				assert.NoError(t, err, r.To)
			}
		})
	}

	_, ok := DefaultTemplateDefinition("acme")
	assert.False(t, ok)
}
