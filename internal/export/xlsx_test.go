package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

func TestWriteXLSX_ContactRequests(t *testing.T) {
	items := []model.ContactRequest{
		{ID: 1, Name: "Bo", Email: "bo@example.com", ContactNumber: "555", Message: "Call me", CreatedAt: "2025-01-02T10:00:00Z"},
		{ID: 2, Name: "Ana", Email: "ana@example.com", ContactNumber: "556", Message: "Pricing?"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ContactRequestsSheet(items)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Contact Requests"}, f.GetSheetList())

	rows, err := f.GetRows("Contact Requests")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Contact Number", "Message", "Created At"}, rows[0])
	assert.Equal(t, []string{"1", "Bo", "bo@example.com", "555", "Call me", "2025-01-02T10:00:00Z"}, rows[1])
	assert.Equal(t, "Pricing?", rows[2][4])
}

func TestWriteXLSX_DemoRequestsServiceName(t *testing.T) {
	items := []model.DemoRequest{
		{ID: 7, Name: "Bo", Service: &model.ServiceRef{ID: 1, Name: "Consulting"}, PreferredDatetime: "2025-02-01T09:00:00Z"},
		{ID: 8, Name: "Ana"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, DemoRequestsSheet(items)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Demo Requests", "E2")
	require.NoError(t, err)
	assert.Equal(t, "Consulting", v)

	v, err = f.GetCellValue("Demo Requests", "E3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestWriteXLSX_EmptySheetHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ContactRequestsSheet(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Contact Requests")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
