package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	apperrors "vaxcli/internal/errors"
	"vaxcli/pkg/contracts/domain"
)

func newSheetsServer(t *testing.T, values map[string][][]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for id, rows := range values {
			if strings.Contains(r.URL.Path, "/v4/spreadsheets/"+id+"/values/") {
				assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"range":          "Sheet1!A1:Z100",
					"majorDimension": "ROWS",
					"values":         rows,
				})
				return
			}
		}
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSheetsSource_Read(t *testing.T) {
	srv := newSheetsServer(t, map[string][][]interface{}{
		"sheet-inc": {
			{"CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION", "DENOMINATOR", "INCIDENCE_RATE"},
			{"AFG", "Afghanistan", 2019, "MEASLES", "Measles", "per 1,000,000 total population", 12.5},
			{"ALB", "Albania", 2020, "MEASLES", "Measles", "per 1,000,000 total population"},
		},
	})

	ctx := context.Background()
	src, err := NewSheetsSource(ctx, SheetsConfig{
		Spreadsheets:      map[string]string{"incidence": "sheet-inc"},
		RequestsPerMinute: 600,
	}, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, "sheets", src.Name())

	spec, _ := domain.LookupDataset("incidence")
	tbl, err := src.Read(ctx, spec)
	require.NoError(t, err)
	require.NoError(t, CheckColumns(tbl, spec))

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "2019", tbl.Get(0, "YEAR").Text())
	assert.Equal(t, "12.5", tbl.Get(0, "INCIDENCE_RATE").Text())
	assert.True(t, tbl.Get(1, "INCIDENCE_RATE").IsMissing())
}

func TestSheetsSource_Errors(t *testing.T) {
	srv := newSheetsServer(t, nil)
	ctx := context.Background()

	src, err := NewSheetsSource(ctx, SheetsConfig{
		Spreadsheets: map[string]string{"coverage": "missing-sheet"},
	}, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	spec, _ := domain.LookupDataset("incidence")
	_, err = src.Read(ctx, spec)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	spec, _ = domain.LookupDataset("coverage")
	_, err = src.Read(ctx, spec)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConnection))
}

func TestNewSheetsSource_MissingCredentials(t *testing.T) {
	_, err := NewSheetsSource(context.Background(), SheetsConfig{CredentialsFile: "/nonexistent/creds.json"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "abc", cellText("abc"))
	assert.Equal(t, "2019", cellText(2019.0))
	assert.Equal(t, "1500000", cellText(1.5e6))
	assert.Equal(t, "true", cellText(true))
}
