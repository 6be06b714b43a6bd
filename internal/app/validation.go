package app

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evanschultz/taskboard/internal/domain"
)

// validate is the shared form validator.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePriority(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseStatus(fl.Field().String())
		return err == nil
	})
}

// CreateTaskInput is the task creation form. Enum and date fields are raw form
// strings; blank priority and status take the domain defaults.
type CreateTaskInput struct {
	ID                string `json:"id,omitempty" validate:"omitempty,max=64"`
	Title             string `json:"title" validate:"required,nonblank,max=200"`
	AssigneeName      string `json:"assignee,omitempty" validate:"max=80"`
	AssigneeAvatar    string `json:"avatar,omitempty" validate:"max=4"`
	Priority          string `json:"priority,omitempty" validate:"omitempty,priority"`
	Status            string `json:"status,omitempty" validate:"omitempty,status"`
	StartDate         string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate           string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Project           string `json:"project,omitempty" validate:"max=80"`
	Progress          int    `json:"progress,omitempty" validate:"gte=0,lte=100"`
	Subtasks          int    `json:"subtasks,omitempty" validate:"gte=0"`
	CompletedSubtasks int    `json:"completed_subtasks,omitempty" validate:"gte=0,ltefield=Subtasks"`
	Description       string `json:"description,omitempty"`
	TimeEstimated     string `json:"time_estimated,omitempty" validate:"max=32"`
}

// Validate checks the form and returns a *ValidationError listing every bad field.
func (in CreateTaskInput) Validate() error {
	fields := map[string]string{}
	if err := validate.Struct(in); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
	}
	if _, bad := fields["start_date"]; !bad {
		if _, bad := fields["end_date"]; !bad {
			start, _ := domain.ParseDate(in.StartDate)
			end, _ := domain.ParseDate(in.EndDate)
			if !start.IsZero() && !end.IsZero() && end.Before(start) {
				fields["end_date"] = "end date must not be before start date"
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// toTaskInput converts an already validated form.
func (in CreateTaskInput) toTaskInput(id string) domain.TaskInput {
	out := domain.TaskInput{
		ID:                id,
		Title:             in.Title,
		Assignee:          domain.Assignee{Name: in.AssigneeName, Avatar: in.AssigneeAvatar},
		Progress:          in.Progress,
		Project:           in.Project,
		Subtasks:          in.Subtasks,
		CompletedSubtasks: in.CompletedSubtasks,
		Description:       in.Description,
		TimeTracked:       "0h",
		TimeEstimated:     in.TimeEstimated,
	}
	if out.Assignee.Avatar == "" {
		out.Assignee.Avatar = initials(in.AssigneeName)
	}
	if strings.TrimSpace(in.Priority) != "" {
		out.Priority, _ = domain.ParsePriority(in.Priority)
	}
	if strings.TrimSpace(in.Status) != "" {
		out.Status, _ = domain.ParseStatus(in.Status)
	}
	out.StartDate, _ = domain.ParseDate(in.StartDate)
	out.EndDate, _ = domain.ParseDate(in.EndDate)
	return out
}

// fieldMessage renders one inline form message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "ltefield":
		return "must not exceed subtasks"
	case "datetime":
		return "must be a date like 2024-01-31"
	case "priority":
		return "must be High, Medium or Low"
	case "status":
		return "must be To Do, In Progress, Review or Completed"
	default:
		return "is invalid"
	}
}

// initials derives a two-letter avatar from a display name.
func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
