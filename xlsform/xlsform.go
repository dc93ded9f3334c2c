// Package xlsform converts between a project's question list and the
// two-sheet XLSForm workbook convention (survey + choices) understood by
// form deployment tools like KoboToolbox and ODK.
package xlsform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mbolis/survey-nest/model"
)

const (
	surveySheet  = "survey"
	choicesSheet = "choices"
)

// Export renders the form as an XLSForm workbook. Each question becomes a
// survey row; select_one/select_multiple questions reference a choice list
// named after the question, one choices row per option (opt1, opt2, ...).
// When no question has choices the choices sheet is omitted entirely.
func Export(form []model.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", surveySheet); err != nil {
		return nil, errors.Wrap(err, "xlsform: rename survey sheet")
	}

	surveyRows := [][]any{{"type", "name", "label", "required"}}
	for _, q := range form {
		typeCell := q.Type
		if model.HasChoices(q.Type) {
			typeCell = q.Type + " " + q.Name
		}
		requiredCell := ""
		if q.Required {
			requiredCell = "yes"
		}
		surveyRows = append(surveyRows, []any{typeCell, q.Name, q.Label, requiredCell})
	}
	if err := writeRows(f, surveySheet, surveyRows); err != nil {
		return nil, err
	}

	choiceRows := [][]any{{"list_name", "name", "label"}}
	for _, q := range form {
		for i, choice := range q.Choices {
			choiceRows = append(choiceRows, []any{q.Name, fmt.Sprintf("opt%d", i+1), choice})
		}
	}
	if len(choiceRows) > 1 {
		if _, err := f.NewSheet(choicesSheet); err != nil {
			return nil, errors.Wrap(err, "xlsform: create choices sheet")
		}
		if err := writeRows(f, choicesSheet, choiceRows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "xlsform: write workbook")
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		row := row
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return errors.Wrapf(err, "xlsform: write %s row %d", sheet, i+1)
		}
	}
	return nil
}

// Import parses an XLSForm workbook into a list of new questions, each
// with a fresh id. Rows with a blank type, name or label are skipped.
// Imported names are taken verbatim: no deduplication against each other
// or against an existing form is attempted (matching the source tool this
// replaces; callers append the result to a form as-is).
func Import(data []byte) ([]model.Question, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "could not read workbook")
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(surveySheet); idx < 0 {
		return nil, errors.New("XLSForm must contain a 'survey' sheet")
	}
	rows, err := f.GetRows(surveySheet)
	if err != nil {
		return nil, errors.Wrap(err, "could not read survey sheet")
	}
	if len(rows) == 0 {
		return nil, missingColumns(nil)
	}

	cols := columnIndex(rows[0])
	if err := missingColumns(cols); err != nil {
		return nil, err
	}

	choices, err := readChoices(f)
	if err != nil {
		return nil, err
	}

	reqCol, hasRequired := cols["required"]

	var questions []model.Question
	for _, row := range rows[1:] {
		typeCell := cell(row, cols["type"])
		name := cell(row, cols["name"])
		label := cell(row, cols["label"])
		if typeCell == "" || name == "" || label == "" {
			continue
		}

		q := model.Question{
			ID:      model.NewQuestionID(),
			Name:    name,
			Label:   label,
			Type:    typeCell,
			Choices: []string{},
		}
		if hasRequired {
			q.Required = parseRequired(cell(row, reqCol))
		}

		if strings.HasPrefix(typeCell, model.TypeSelectOne) || strings.HasPrefix(typeCell, model.TypeSelectMultiple) {
			listName := name
			if i := strings.IndexAny(typeCell, " \t"); i >= 0 {
				if rest := strings.TrimSpace(typeCell[i+1:]); rest != "" {
					listName = rest
				}
			}
			q.Choices = choices[listName]
			if q.Choices == nil {
				q.Choices = []string{}
			}

			if strings.HasPrefix(typeCell, model.TypeSelectMultiple) {
				q.Type = model.TypeSelectMultiple
			} else {
				q.Type = model.TypeSelectOne
			}
		}

		questions = append(questions, q)
	}
	return questions, nil
}

func missingColumns(cols map[string]int) error {
	var errs *multierror.Error
	for _, col := range []string{"type", "name", "label"} {
		if _, ok := cols[col]; !ok {
			errs = multierror.Append(errs, errors.Errorf("XLSForm survey sheet must contain a %q column", col))
		}
	}
	return errs.ErrorOrNil()
}

// readChoices collects the choices sheet into list_name -> choice texts,
// preserving row order. The label cell wins; a blank label falls back to
// the name cell. A missing sheet, or one without a list_name column,
// yields no choices at all.
func readChoices(f *excelize.File) (map[string][]string, error) {
	if idx, _ := f.GetSheetIndex(choicesSheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(choicesSheet)
	if err != nil {
		return nil, errors.Wrap(err, "could not read choices sheet")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := columnIndex(rows[0])
	listCol, ok := cols["list_name"]
	if !ok {
		return nil, nil
	}
	labelCol, hasLabel := cols["label"]
	nameCol, hasName := cols["name"]

	choices := map[string][]string{}
	for _, row := range rows[1:] {
		listName := cell(row, listCol)
		if listName == "" {
			continue
		}
		text := ""
		if hasLabel {
			text = cell(row, labelCol)
		}
		if text == "" && hasName {
			text = cell(row, nameCol)
		}
		if text == "" {
			continue
		}
		choices[listName] = append(choices[listName], text)
	}
	return choices, nil
}

func columnIndex(header []string) map[string]int {
	cols := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h != "" {
			if _, seen := cols[h]; !seen {
				cols[h] = i
			}
		}
	}
	return cols
}

// cell returns the trimmed cell at index i, tolerating short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRequired(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "required":
		return true
	}
	return false
}
