package demo

import (
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarehouse_QueryPreservesColumnOrder(t *testing.T) {
	w, err := OpenWarehouse(":memory:")
	require.NoError(t, err)
	defer w.Close()

	results, err := w.Query(context.Background(), `SELECT region, SUM(amount) AS total_sales FROM sales GROUP BY region ORDER BY total_sales DESC`)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, []string{"region", "total_sales"}, results.Columns())
}

func TestWarehouse_SchemaDDL(t *testing.T) {
	w, err := OpenWarehouse(":memory:")
	require.NoError(t, err)
	defer w.Close()

	ddl, err := w.SchemaDDL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ddl, "CREATE TABLE employees")
	assert.Contains(t, ddl, "CREATE TABLE sales")
	assert.Contains(t, ddl, "CREATE TABLE projects")
}

func TestTranslate_PresetQuestions(t *testing.T) {
	tests := []struct {
		question string
		wantSQL  string
	}{
		{"What are the top 5 highest paid employees?", "ORDER BY salary DESC LIMIT 5"},
		{"What is the average salary?", "AVG(salary)"},
		{"How many employees are in each department?", "GROUP BY department"},
		{"List departments with more than 2 employees", "HAVING COUNT(*) > 2"},
		{"Show all employees", "FROM employees ORDER BY name"},
		{"Top 5 products by sales", "GROUP BY product ORDER BY total_sales DESC LIMIT 5"},
		{"Sales by month", "strftime('%Y-%m', sale_date)"},
		{"List low-stock products", "WHERE stock < 20"},
		{"Which projects are behind schedule?", "status = 'Delayed'"},
		{"Show all projects", "FROM projects ORDER BY name"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			sqlStr, explanation, err := Translate(tt.question, "")
			require.NoError(t, err)
			assert.Contains(t, sqlStr, tt.wantSQL)
			assert.NotEmpty(t, explanation)
		})
	}
}

func TestTranslate_TableFallback(t *testing.T) {
	sqlStr, _, err := Translate("tell me about customer feedback", "")
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "customer_feedback")
}

func TestTranslate_Unrecognized(t *testing.T) {
	_, _, err := Translate("what is the meaning of life", "sales")

	var unrec *ErrUnrecognized
	require.ErrorAs(t, err, &unrec)
	assert.Contains(t, unrec.Error(), "meaning of life")
}

func TestTranslate_PresetsRunAgainstWarehouse(t *testing.T) {
	w, err := OpenWarehouse(":memory:")
	require.NoError(t, err)
	defer w.Close()

	questions := []string{
		"Show all employees",
		"What are the top 5 highest paid employees?",
		"How many employees are in each department?",
		"What is the average salary?",
		"Top 5 products by sales",
		"Sales by month",
		"List low-stock products",
		"Show all projects",
		"Which projects are behind schedule?",
	}
	for _, q := range questions {
		sqlStr, _, err := Translate(q, "")
		require.NoError(t, err, q)

		results, err := w.Query(context.Background(), sqlStr)
		require.NoError(t, err, q)
		assert.NotEmpty(t, results, q)
	}
}

func TestSuggest_DomainStarters(t *testing.T) {
	got := Suggest("", "employee")
	assert.Contains(t, got, "What is the average salary?")
}

func TestSuggest_PartialInput(t *testing.T) {
	got := Suggest("sal", "")
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Contains(t, strings.ToLower(s), "sal")
	}
}

func TestSuggest_UnknownDomain(t *testing.T) {
	assert.Empty(t, Suggest("", "weather"))
}

func TestSynthesizeTone_WAVHeader(t *testing.T) {
	clip := SynthesizeTone("the average salary is 72000")

	require.Greater(t, len(clip), 44)
	assert.Equal(t, "RIFF", string(clip[0:4]))
	assert.Equal(t, "WAVE", string(clip[8:12]))
	assert.Equal(t, uint32(len(clip)-8), binary.LittleEndian.Uint32(clip[4:8]))
}
