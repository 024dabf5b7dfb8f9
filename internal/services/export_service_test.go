package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportMaterials(t *testing.T) {
	env := newTestEnv(t)
	materials := env.materials(true)
	ctx := context.Background()

	_, err := materials.Create(ctx, &MaterialRequest{Title: "VLAN", CategoryID: &env.cisco, Duration: ptr("45 menit")}, actorOf(env.owner))
	require.NoError(t, err)
	_, err = materials.Create(ctx, &MaterialRequest{Title: "Hotspot", CategoryID: &env.mikrotik}, actorOf(env.owner))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewExportService(env.repo, env.logger).ExportMaterials(ctx, "Cisco Networking", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Title", "Category", "Author", "Duration", "Created At", "Updated At"}, rows[0])
	assert.Equal(t, "VLAN", rows[1][1])
	assert.Equal(t, "Cisco Networking", rows[1][2])
	assert.Equal(t, "guru_andi", rows[1][3])
	assert.Equal(t, "45 menit", rows[1][4])
}

func TestExportService_EmptyListing(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, NewExportService(env.repo, env.logger).ExportMaterials(context.Background(), "Unknown", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
