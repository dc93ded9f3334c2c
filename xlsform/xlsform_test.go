package xlsform

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mbolis/survey-nest/model"
)

func sheetRows(t *testing.T, workbook []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func buildWorkbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i := range rows {
			row := rows[i]
			require.NoError(t, f.SetSheetRow(name, cellRef(i), &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func cellRef(row int) string {
	cell, _ := excelize.CoordinatesToCellName(1, row+1)
	return cell
}

func TestExportCensusExample(t *testing.T) {
	form := []model.Question{
		{ID: "q1", Name: "name", Label: "Name", Type: model.TypeText, Required: true},
		{ID: "q2", Name: "gender", Label: "Gender", Type: model.TypeSelectOne, Choices: []string{"M", "F"}},
	}

	workbook, err := Export(form)
	require.NoError(t, err)

	survey := sheetRows(t, workbook, "survey")
	require.Len(t, survey, 3)
	assert.Equal(t, []string{"type", "name", "label", "required"}, survey[0])
	assert.Equal(t, []string{"text", "name", "Name", "yes"}, survey[1])
	// trailing blank required cell may be trimmed by the reader
	assert.Equal(t, []string{"select_one gender", "gender", "Gender"}, survey[2][:3])

	choices := sheetRows(t, workbook, "choices")
	require.Len(t, choices, 3)
	assert.Equal(t, []string{"list_name", "name", "label"}, choices[0])
	assert.Equal(t, []string{"gender", "opt1", "M"}, choices[1])
	assert.Equal(t, []string{"gender", "opt2", "F"}, choices[2])
}

func TestExportOmitsChoicesSheetWhenNoChoices(t *testing.T) {
	workbook, err := Export([]model.Question{
		{ID: "q1", Name: "name", Label: "Name", Type: model.TypeText},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"survey"}, f.GetSheetList())
}

func TestRoundTrip(t *testing.T) {
	form := []model.Question{
		{ID: "q1", Name: "name", Label: "Name", Type: model.TypeText, Choices: []string{}, Required: true},
		{ID: "q2", Name: "age", Label: "Age", Type: model.TypeInteger, Choices: []string{}},
		{ID: "q3", Name: "height", Label: "Height", Type: model.TypeDecimal, Choices: []string{}, Required: true},
		{ID: "q4", Name: "dob", Label: "Date of birth", Type: model.TypeDate, Choices: []string{}},
		{ID: "q5", Name: "gender", Label: "Gender", Type: model.TypeSelectOne, Choices: []string{"M", "F"}},
		{ID: "q6", Name: "langs", Label: "Languages", Type: model.TypeSelectMultiple, Choices: []string{"English", "French", "Swahili"}, Required: true},
		{ID: "q7", Name: "intro", Label: "Welcome to the census", Type: model.TypeNote, Choices: []string{}},
	}

	workbook, err := Export(form)
	require.NoError(t, err)

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, len(form))

	for i, q := range imported {
		orig := form[i]
		assert.Equal(t, orig.Name, q.Name, "name of #%d", i+1)
		assert.Equal(t, orig.Label, q.Label, "label of #%d", i+1)
		assert.Equal(t, orig.Type, q.Type, "type of #%d", i+1)
		assert.Equal(t, orig.Required, q.Required, "required of #%d", i+1)
		assert.Equal(t, orig.Choices, q.Choices, "choices of #%d", i+1)
		assert.NotEmpty(t, q.ID)
		assert.NotEqual(t, orig.ID, q.ID, "imported questions get fresh ids")
	}
}

func TestImportRequiresSurveySheet(t *testing.T) {
	workbook := buildWorkbook(t, map[string][][]any{
		"not_survey": {{"type", "name", "label"}},
	})

	_, err := Import(workbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "survey")
}

func TestImportRequiresColumns(t *testing.T) {
	workbook := buildWorkbook(t, map[string][][]any{
		"survey": {{"type", "label"}},
	})

	_, err := Import(workbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name"`)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import([]byte("this is not a zip archive"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workbook")
}

func TestImportSkipsBlankRows(t *testing.T) {
	workbook := buildWorkbook(t, map[string][][]any{
		"survey": {
			{"type", "name", "label", "required"},
			{"text", "name", "Name", "yes"},
			{"", "blank_type", "Blank", ""},
			{"integer", "", "Blank name", ""},
			{"decimal", "blank_label", "", ""},
			{"note", "outro", "Thanks!", ""},
		},
	})

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "name", imported[0].Name)
	assert.Equal(t, "outro", imported[1].Name)
}

func TestImportSelectTypes(t *testing.T) {
	workbook := buildWorkbook(t, map[string][][]any{
		"survey": {
			{"type", "name", "label"},
			{"select_one yn", "consent", "Do you agree?"},
			{"select_multiple", "langs", "Languages"},
			{"select_one", "color", "Favorite color"},
		},
		"choices": {
			{"list_name", "name", "label"},
			{"yn", "opt1", "Yes"},
			{"yn", "opt2", "No"},
			{"langs", "opt1", "English"},
			{"langs", "opt2", ""},     // blank label falls back to name
			{"other", "opt1", "Nope"}, // unrelated list
		},
	})

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, 3)

	t.Run("ExplicitListName", func(t *testing.T) {
		q := imported[0]
		assert.Equal(t, model.TypeSelectOne, q.Type)
		assert.Equal(t, []string{"Yes", "No"}, q.Choices)
		assert.False(t, q.Required, "absent required column means not required")
	})

	t.Run("ListNameDefaultsToQuestionName", func(t *testing.T) {
		q := imported[1]
		assert.Equal(t, model.TypeSelectMultiple, q.Type)
		assert.Equal(t, []string{"English", "opt2"}, q.Choices)
	})

	t.Run("NoMatchingListYieldsEmptyChoices", func(t *testing.T) {
		q := imported[2]
		assert.Equal(t, model.TypeSelectOne, q.Type)
		assert.Equal(t, []string{}, q.Choices)
	})
}

func TestImportToleratesMissingChoicesSheet(t *testing.T) {
	workbook := buildWorkbook(t, map[string][][]any{
		"survey": {
			{"type", "name", "label"},
			{"select_one gender", "gender", "Gender"},
		},
	})

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, []string{}, imported[0].Choices)
}

func TestImportRequiredParsing(t *testing.T) {
	rows := [][]any{{"type", "name", "label", "required"}}
	for i, cell := range []string{"yes", "TRUE", "1", "Required", "no", "", "0", "maybe"} {
		rows = append(rows, []any{"text", "q" + string(rune('a'+i)), "Q", cell})
	}
	workbook := buildWorkbook(t, map[string][][]any{"survey": rows})

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, 8)

	expected := []bool{true, true, true, true, false, false, false, false}
	for i, q := range imported {
		assert.Equal(t, expected[i], q.Required, "row %d", i+1)
	}
}

func TestImportDoesNotDeduplicateNames(t *testing.T) {
	// duplicate variable names are imported verbatim; deduplication against
	// an existing form is deliberately not attempted
	workbook := buildWorkbook(t, map[string][][]any{
		"survey": {
			{"type", "name", "label"},
			{"text", "name", "First"},
			{"text", "name", "Second"},
		},
	})

	imported, err := Import(workbook)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, imported[0].Name, imported[1].Name)
}
