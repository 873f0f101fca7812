package providers

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"qualitivate/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The surveys schema is declared twice, once in the migration and once in
// the provider's column list. These tests catch the two drifting apart
// without a live database.

func surveysTable(t *testing.T) map[string]string {
	t.Helper()
	raw, err := os.ReadFile("../../../migrations/000002_surveys.up.sql")
	require.NoError(t, err)

	start := strings.Index(string(raw), "CREATE TABLE surveys (")
	require.GreaterOrEqual(t, start, 0)
	body := string(raw)[start:]
	end := strings.Index(body, ");")
	require.GreaterOrEqual(t, end, 0)

	columns := make(map[string]string)
	for _, line := range strings.Split(body[:end], "\n")[1:] {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")
		if line == "" {
			continue
		}
		name, definition, ok := strings.Cut(line, " ")
		require.True(t, ok, "unparsable column line %q", line)
		columns[name] = definition
	}
	return columns
}

func TestSurveyColumnsExistInMigration(t *testing.T) {
	columns := surveysTable(t)
	for _, column := range strings.FieldsFunc(surveyColumns, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	}) {
		_, ok := columns[column]
		assert.True(t, ok, "column %q is queried but not migrated", column)
	}
}

func TestUpdateSurveyTouchesOnlyMigratedColumns(t *testing.T) {
	columns := surveysTable(t)
	for _, column := range []string{
		"title", "description", "status", "is_public", "is_anonymous",
		"settings", "starts_at", "ends_at", "updated_at",
	} {
		_, ok := columns[column]
		assert.True(t, ok, "column %q is updated but not migrated", column)
	}
}

func TestNullableSurveyFieldsAreNullableColumns(t *testing.T) {
	columns := surveysTable(t)
	surveyType := reflect.TypeOf(domains.Survey{})
	for i := 0; i < surveyType.NumField(); i++ {
		field := surveyType.Field(i)
		if field.Type.Kind() != reflect.Pointer {
			continue
		}
		column := strings.Split(field.Tag.Get("json"), ",")[0]
		definition, ok := columns[column]
		require.True(t, ok, "no column for field %s", field.Name)
		assert.NotContains(t, definition, "NOT NULL",
			"field %s can be nil but column %q rejects NULL", field.Name, column)
	}
}
