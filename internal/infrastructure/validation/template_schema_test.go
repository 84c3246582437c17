package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateSchemaValidator_Default(t *testing.T) {
	v, err := NewTemplateSchemaValidator("")
	require.NoError(t, err)

	tests := []struct {
		name     string
		doc      string
		wantErrs []string
		contains string
	}{
		{
			name: "valid document",
			doc:  `{"platform":"ctaima","destinationSchema":{"company":{"vat":""}},"rules":[{"from":"company.taxId","to":"company.vat","transform":"prefix:ES"}]}`,
		},
		{
			name:     "missing rules",
			doc:      `{"platform":"ctaima","destinationSchema":{}}`,
			contains: "rules",
		},
		{
			name:     "empty rules",
			doc:      `{"platform":"ctaima","destinationSchema":{},"rules":[]}`,
			contains: "/rules",
		},
		{
			name:     "unknown rule property",
			doc:      `{"platform":"ctaima","destinationSchema":{},"rules":[{"from":"a","to":"b","when":"x"}]}`,
			contains: "/rules/0",
		},
		{
			name:     "bad platform code",
			doc:      `{"platform":"CTAIMA!","destinationSchema":{},"rules":[{"from":"a","to":"b"}]}`,
			contains: "/platform",
		},
		{
			name:     "not JSON",
			doc:      `{"platform":`,
			contains: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateDocument([]byte(tt.doc))
			if tt.contains == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.contains)
		})
	}
}

func TestTemplateSchemaValidator_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strict.schema.json")
	schema := `{"type":"object","required":["platform","owner"]}`
	require.NoError(t, os.WriteFile(path, []byte(schema), 0o600))

	v, err := NewTemplateSchemaValidator(path)
	require.NoError(t, err)
	errs := v.ValidateDocument([]byte(`{"platform":"nalanda"}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "owner")

	_, err = NewTemplateSchemaValidator(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "template schema load failed")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":12}`), 0o600))
	_, err = NewTemplateSchemaValidator(bad)
	assert.Error(t, err)
}
