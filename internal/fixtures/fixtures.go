// Package fixtures provides the sample task set shipped with taskboard and a
// data-quality check over task inputs.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/evanschultz/taskboard/internal/domain"
)

//go:embed tasks.yaml
var sampleYAML []byte

// fileDoc is the on-disk fixture layout.
type fileDoc struct {
	Tasks []taskDoc `yaml:"tasks"`
}

type taskDoc struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Assignee struct {
		Name   string `yaml:"name"`
		Avatar string `yaml:"avatar"`
	} `yaml:"assignee"`
	Priority          string `yaml:"priority"`
	Status            string `yaml:"status"`
	StartDate         string `yaml:"start_date"`
	EndDate           string `yaml:"end_date"`
	Progress          int    `yaml:"progress"`
	Project           string `yaml:"project"`
	Subtasks          int    `yaml:"subtasks"`
	CompletedSubtasks int    `yaml:"completed_subtasks"`
	Description       string `yaml:"description"`
	TimeTracked       string `yaml:"time_tracked"`
	TimeEstimated     string `yaml:"time_estimated"`
}

// Load parses the embedded sample tasks.
func Load() ([]domain.TaskInput, error) {
	return Parse(bytes.NewReader(sampleYAML))
}

// Parse decodes a fixture document. Enum and date fields are parsed, but the
// inputs are not validated; see Check.
func Parse(r io.Reader) ([]domain.TaskInput, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	out := make([]domain.TaskInput, 0, len(doc.Tasks))
	for idx, td := range doc.Tasks {
		in, err := td.toInput()
		if err != nil {
			return nil, fmt.Errorf("fixture task %d (%q): %w", idx, td.ID, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (td taskDoc) toInput() (domain.TaskInput, error) {
	in := domain.TaskInput{
		ID:                td.ID,
		Title:             td.Title,
		Assignee:          domain.Assignee{Name: td.Assignee.Name, Avatar: td.Assignee.Avatar},
		Progress:          td.Progress,
		Project:           td.Project,
		Subtasks:          td.Subtasks,
		CompletedSubtasks: td.CompletedSubtasks,
		Description:       td.Description,
		TimeTracked:       td.TimeTracked,
		TimeEstimated:     td.TimeEstimated,
	}
	var err error
	if td.Priority != "" {
		if in.Priority, err = domain.ParsePriority(td.Priority); err != nil {
			return domain.TaskInput{}, err
		}
	}
	if td.Status != "" {
		if in.Status, err = domain.ParseStatus(td.Status); err != nil {
			return domain.TaskInput{}, err
		}
	}
	if in.StartDate, err = domain.ParseDate(td.StartDate); err != nil {
		return domain.TaskInput{}, fmt.Errorf("start_date: %w", err)
	}
	if in.EndDate, err = domain.ParseDate(td.EndDate); err != nil {
		return domain.TaskInput{}, fmt.Errorf("end_date: %w", err)
	}
	return in, nil
}

// Issue describes one data-quality problem in a fixture set.
type Issue struct {
	TaskID string
	Field  string
	Reason string
}

// String renders the issue for logs and test output.
func (i Issue) String() string {
	return fmt.Sprintf("task %q %s: %s", i.TaskID, i.Field, i.Reason)
}

// Check flags fixture tasks whose completed subtasks exceed the total, and
// duplicate ids. It reports problems rather than rejecting the data.
func Check(tasks []domain.TaskInput) []Issue {
	var issues []Issue
	seen := make(map[string]struct{}, len(tasks))
	for _, in := range tasks {
		if _, dup := seen[in.ID]; dup {
			issues = append(issues, Issue{TaskID: in.ID, Field: "id", Reason: "duplicate id"})
		}
		seen[in.ID] = struct{}{}
		if in.CompletedSubtasks > in.Subtasks {
			issues = append(issues, Issue{
				TaskID: in.ID,
				Field:  "completed_subtasks",
				Reason: fmt.Sprintf("%d completed exceeds %d subtasks", in.CompletedSubtasks, in.Subtasks),
			})
		}
	}
	return issues
}
