package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/model"
)

func int64p(v int64) *int64 { return &v }

// ---------- normalizeNodeQuota ----------

func TestNormalizeNodeQuota_Unchanged(t *testing.T) {
	current := int64p(5)
	got, err := normalizeNodeQuota(request.OptionalInt{}, current)
	require.NoError(t, err)
	assert.Equal(t, current, got)

	got, err = normalizeNodeQuota(request.OptionalInt{}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeNodeQuota_Cleared(t *testing.T) {
	got, err := normalizeNodeQuota(request.OptionalInt{State: request.FieldCleared}, int64p(5))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeNodeQuota_Set(t *testing.T) {
	got, err := normalizeNodeQuota(request.OptionalInt{State: request.FieldSet, Value: 20}, int64p(5))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(20), *got)

	// Zero is a valid quota: it means "no nodes", not "unset".
	got, err = normalizeNodeQuota(request.OptionalInt{State: request.FieldSet, Value: 0}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(0), *got)
}

func TestNormalizeNodeQuota_Negative(t *testing.T) {
	_, err := normalizeNodeQuota(request.OptionalInt{State: request.FieldSet, Value: -1}, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

// ---------- normalizeLifetime ----------

func TestNormalizeLifetime_Unchanged(t *testing.T) {
	current := int64p(60)
	got, err := normalizeLifetime("session_lifetime", request.OptionalLifetime{}, current)
	require.NoError(t, err)
	assert.Equal(t, current, got)
}

func TestNormalizeLifetime_Cleared(t *testing.T) {
	got, err := normalizeLifetime("session_lifetime", request.OptionalLifetime{State: request.FieldCleared}, int64p(60))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeLifetime_SetSeconds(t *testing.T) {
	got, err := normalizeLifetime("session_lifetime",
		request.OptionalLifetime{State: request.FieldSet, Seconds: 3600}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3600), *got)
}

func TestNormalizeLifetime_SetToken(t *testing.T) {
	got, err := normalizeLifetime("session_lifetime_max",
		request.OptionalLifetime{State: request.FieldSet, Token: "2h", IsToken: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7200), *got)
}

func TestNormalizeLifetime_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		field request.OptionalLifetime
	}{
		{"zero seconds", request.OptionalLifetime{State: request.FieldSet, Seconds: 0}},
		{"negative seconds", request.OptionalLifetime{State: request.FieldSet, Seconds: -60}},
		{"malformed token", request.OptionalLifetime{State: request.FieldSet, Token: "soon", IsToken: true}},
		{"unknown unit", request.OptionalLifetime{State: request.FieldSet, Token: "2y", IsToken: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeLifetime("session_lifetime", tt.field, nil)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

// ---------- QuotaDefaults ----------

func TestQuotaDefaults_EffectiveNodeQuota(t *testing.T) {
	defaults := QuotaDefaults{NodeQuota: 10, SessionLifetime: 21600}

	assert.Equal(t, int64(10), defaults.EffectiveNodeQuota(&model.Tenant{}))
	assert.Equal(t, int64(5), defaults.EffectiveNodeQuota(&model.Tenant{NodeQuota: int64p(5)}))
	assert.Equal(t, int64(0), defaults.EffectiveNodeQuota(&model.Tenant{NodeQuota: int64p(0)}))
}

func TestQuotaDefaults_EffectiveLifetime(t *testing.T) {
	defaults := QuotaDefaults{NodeQuota: 10, SessionLifetime: 21600}

	// Default applies when the tenant has no lifetime of its own.
	assert.Equal(t, int64(21600), defaults.EffectiveLifetime(&model.Tenant{}, 0))

	// Tenant value beats the default; an explicit request beats both.
	tenant := &model.Tenant{SessionLifetime: int64p(60)}
	assert.Equal(t, int64(60), defaults.EffectiveLifetime(tenant, 0))
	assert.Equal(t, int64(120), defaults.EffectiveLifetime(tenant, 120))

	// The cap clamps whatever won.
	capped := &model.Tenant{SessionLifetime: int64p(60), SessionLifetimeMax: int64p(120)}
	assert.Equal(t, int64(120), defaults.EffectiveLifetime(capped, 500))
	assert.Equal(t, int64(90), defaults.EffectiveLifetime(capped, 90))
	assert.Equal(t, int64(60), defaults.EffectiveLifetime(capped, 0))
}
