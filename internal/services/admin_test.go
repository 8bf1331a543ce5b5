package services

import (
	"context"
	"testing"

	"github.com/psychmag/psychmag/internal/metrics"
	"github.com/psychmag/psychmag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Add(t *testing.T) {
	auditor := &captureAuditor{}
	svc := NewAdminService(setupTestStore(t), auditor, metrics.NewNoopMetrics())
	ctx := context.Background()

	admin, err := svc.Add(ctx, " Editor@X.com ", false)
	require.NoError(t, err)
	assert.Equal(t, "editor@x.com", admin.Email)
	assert.False(t, admin.IsSuperAdmin)
	assert.Equal(t, models.EventAdminAdded, auditor.last().EventType)

	_, err = svc.Add(ctx, "editor@X.COM", true)
	assert.ErrorIs(t, err, ErrAdminExists)
	assert.False(t, auditor.last().Success)

	_, err = svc.Add(ctx, "not an email", false)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	admins, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "owner@x.com", admins[0].Email, "super admins first")
}

func TestAdminService_Remove(t *testing.T) {
	svc := NewAdminService(setupTestStore(t), nil, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "editor@x.com", false)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, "Owner@x.com", "owner@x.com"), ErrSelfModification)
	assert.ErrorIs(t, svc.Remove(ctx, "owner@x.com", "missing@x.com"), ErrNotFound)

	require.NoError(t, svc.Remove(ctx, "owner@x.com", "EDITOR@x.com"))
	_, err = svc.Get(ctx, "editor@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminService_SetSuperAdmin(t *testing.T) {
	svc := NewAdminService(setupTestStore(t), nil, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "editor@x.com", false)
	require.NoError(t, err)

	admin, err := svc.SetSuperAdmin(ctx, "owner@x.com", "editor@x.com", true)
	require.NoError(t, err)
	assert.True(t, admin.IsSuperAdmin)

	// Owner cannot demote themself even though another super admin exists
	_, err = svc.SetSuperAdmin(ctx, "owner@x.com", "owner@x.com", false)
	assert.ErrorIs(t, err, ErrSelfModification)

	// Another super admin may demote the owner
	admin, err = svc.SetSuperAdmin(ctx, "editor@x.com", "owner@x.com", false)
	require.NoError(t, err)
	assert.False(t, admin.IsSuperAdmin)

	// Now editor is the last super admin
	_, err = svc.SetSuperAdmin(ctx, "owner@x.com", "editor@x.com", false)
	assert.ErrorIs(t, err, ErrLastSuperAdmin)

	total, supers, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), supers)
}
